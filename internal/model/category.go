package model

// Category is a doctrinal classification (madhhab) that documents belong to.
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
