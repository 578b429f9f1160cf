package api

// Track is one playable catalog entry. Identity is by ID; everything else is
// descriptive. The service spells fields the way the web client does, hence
// the underscored JSON names.
type Track struct {
	ID          int      `json:"_id"`
	Name        string   `json:"name"`
	Author      string   `json:"author"`
	Album       string   `json:"album"`
	Genre       []string `json:"genre"`
	ReleaseDate string   `json:"release_date"`
	DurationSec int      `json:"duration_in_seconds"`
	TrackFile   string   `json:"track_file"`
	Logo        string   `json:"logo"`
	StaredUser  []int    `json:"stared_user"`
}

// User is the account record returned by the auth endpoints.
type User struct {
	ID       int    `json:"_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Selection is a server-curated playlist: a name plus track ids to be
// resolved against the catalog.
type Selection struct {
	ID    int    `json:"_id"`
	Name  string `json:"name"`
	Items []int  `json:"items"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type SignUpResponse struct {
	Message string `json:"message"`
	Result  User   `json:"result"`
	Success bool   `json:"success"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair is the bearer credential pair minted by POST /user/token/.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
