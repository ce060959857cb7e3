package model

// User is the profile returned by GET /auth/me and by POST /users.  The
// remote API never returns the password, so there is no field for it.
type User struct {
    ID     uint64 `json:"id"`
    Email  string `json:"email"`
    Nom    string `json:"nom"`
    Prenom string `json:"prenom"`
}

// DisplayName returns "Prenom Nom", or the email when both are empty.
func (u User) DisplayName() string {
    switch {
    case u.Prenom != "" && u.Nom != "":
        return u.Prenom + " " + u.Nom
    case u.Prenom != "":
        return u.Prenom
    case u.Nom != "":
        return u.Nom
    }
    return u.Email
}
