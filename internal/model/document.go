package model

// Document is a reference book as exposed to callers.
// Values of this type are only produced by the schema package from a validated row.
type Document struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	FolderID     string  `json:"folder_id"`
	FileID       string  `json:"file_id"`
	DownloadURL  string  `json:"download_url"`
	CategoryID   *int64  `json:"category_id,omitempty"`
	CategoryName *string `json:"category_name,omitempty"`
}

// DocumentRow is a raw row read from the store, before validation.
// Fields hold whatever the driver returned; schema.DecodeDocument checks them.
type DocumentRow struct {
	ID           any `db:"id"`
	Name         any `db:"name"`
	FolderID     any `db:"folder_id"`
	FileID       any `db:"file_id"`
	DownloadURL  any `db:"download_url"`
	CategoryID   any `db:"category_id"`
	CategoryName any `db:"category_name"`
}
