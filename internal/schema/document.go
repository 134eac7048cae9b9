// Package schema validates raw store rows and converts them into model values.
// A row that does not conform is an error; it is never dropped or patched up.
package schema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"referensi/internal/model"
)

// ErrMalformedRecord is returned when a row read from the store does not match the document schema.
var ErrMalformedRecord = errors.New("malformed record")

// document mirrors model.Document with the constraints every exposed row must satisfy.
type document struct {
	ID           int64   `json:"id" validate:"gt=0"`
	Name         string  `json:"name" validate:"required"`
	FolderID     string  `json:"folder_id" validate:"required"`
	FileID       string  `json:"file_id" validate:"required"`
	DownloadURL  string  `json:"download_url" validate:"required,url"`
	CategoryID   *int64  `json:"category_id" validate:"omitempty,gt=0"`
	CategoryName *string `json:"category_name"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// DecodeDocument validates a single row.
func DecodeDocument(row model.DocumentRow) (model.Document, error) {
	var d decoder

	doc := document{
		Name:         d.requiredString("name", row.Name),
		FolderID:     d.requiredString("folder_id", row.FolderID),
		FileID:       d.requiredString("file_id", row.FileID),
		DownloadURL:  d.requiredString("download_url", row.DownloadURL),
		CategoryID:   d.optionalInt("category_id", row.CategoryID),
		CategoryName: d.optionalString("category_name", row.CategoryName),
	}
	if id := d.optionalInt("id", row.ID); id != nil {
		doc.ID = *id
	} else if row.ID == nil {
		d.fail("id", "is required")
	}

	if len(d.problems) == 0 {
		if err := validate.Struct(doc); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return model.Document{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
			}
			for _, fe := range verrs {
				d.fail(fe.Field(), "failed "+fe.Tag())
			}
		}
	}

	if len(d.problems) > 0 {
		return model.Document{}, fmt.Errorf("%w: %s", ErrMalformedRecord, strings.Join(d.problems, "; "))
	}

	return model.Document{
		ID:           doc.ID,
		Name:         doc.Name,
		FolderID:     doc.FolderID,
		FileID:       doc.FileID,
		DownloadURL:  doc.DownloadURL,
		CategoryID:   doc.CategoryID,
		CategoryName: doc.CategoryName,
	}, nil
}

// DecodeDocuments validates every row, failing on the first that does not conform.
// The result is never nil.
func DecodeDocuments(rows []model.DocumentRow) ([]model.Document, error) {
	docs := make([]model.Document, 0, len(rows))
	for i, row := range rows {
		doc, err := DecodeDocument(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

type decoder struct {
	problems []string
}

func (d *decoder) fail(field, msg string) {
	d.problems = append(d.problems, field+" "+msg)
}

func (d *decoder) requiredString(field string, v any) string {
	if v == nil {
		d.fail(field, "is required")
		return ""
	}
	s, ok := asString(v)
	if !ok {
		d.fail(field, fmt.Sprintf("must be a string, got %T", v))
	}
	return s
}

func (d *decoder) optionalString(field string, v any) *string {
	if v == nil {
		return nil
	}
	s, ok := asString(v)
	if !ok {
		d.fail(field, fmt.Sprintf("must be a string, got %T", v))
		return nil
	}
	return &s
}

func (d *decoder) optionalInt(field string, v any) *int64 {
	if v == nil {
		return nil
	}
	n, ok := asInt64(v)
	if !ok {
		d.fail(field, fmt.Sprintf("must be an integer, got %T", v))
		return nil
	}
	return &n
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
