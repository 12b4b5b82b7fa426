package user

// Principal is the authenticated caller. UserID doubles as the edit lock holder id.
type Principal struct {
	UserID      string
	DisplayName string
}
