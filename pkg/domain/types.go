package domain

// Book is one record in the user's remote collection. The ID is assigned by
// the server and is opaque to the client.
type Book struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Identity is the display identity of the signed-in user.
type Identity struct {
	Email string `json:"email"`
}
