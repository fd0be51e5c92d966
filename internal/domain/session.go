package domain

// SessionUser is owned by the Session Provider; the app only reads it
// and asks for display-name changes.
type SessionUser struct {
	ID          string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

func (u SessionUser) ToDocument() Document {
	return Document{"uid": u.ID, "name": u.DisplayName, "email": u.Email}
}
