package repo

// User is a registered account.
type User struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Message is a post by a user. Seq is assigned by the database and orders
// messages globally.
type Message struct {
	Seq    int64  `db:"seq" json:"seq"`
	ID     string `db:"id" json:"id"`
	UserID int64  `db:"user_id" json:"user_id"`
	Body   string `db:"body" json:"body"`
}
