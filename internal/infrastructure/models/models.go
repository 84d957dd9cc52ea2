package models

// All lists every persisted model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&EmailVerification{},
		&Tontine{},
		&Participation{},
		&Round{},
		&Payment{},
		&Notification{},
		&IdentityVerification{},
	}
}
