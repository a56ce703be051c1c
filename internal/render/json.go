package render

import (
	"net/http"

	"github.com/goccy/go-json"
)

// Envelope wraps a JSON listing.
type Envelope struct {
	Message string           `json:"message"`
	Count   int              `json:"count"`
	Table   string           `json:"table,omitempty"`
	Data    []map[string]any `json:"data"`
}

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// Objects converts t into column-keyed objects with the formatting policy applied.
// The result is never nil so empty listings encode as [].
func (f *Formatter) Objects(t Table) []map[string]any {
	out := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, f.Object(t.Columns, row))
	}
	return out
}

// Object converts one row into a column-keyed object.
func (f *Formatter) Object(columns []string, row []any) map[string]any {
	obj := make(map[string]any, len(columns))
	for i, c := range columns {
		if i < len(row) {
			obj[c] = f.Value(c, row[i])
		}
	}
	return obj
}

// Envelope builds the listing envelope for t.
func (f *Formatter) Envelope(message string, t Table) Envelope {
	data := f.Objects(t)
	return Envelope{Message: message, Count: t.Len(), Data: data}
}

// EncodeJSON marshals v.
func EncodeJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

// WriteJSON writes v with status. Encoding happens before the header is sent so
// a marshal failure can still become a 500.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	body, err := EncodeJSON(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

// WriteError writes {"detail": message} with status.
func WriteError(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, ErrorBody{Detail: message})
}
