package models

import "time"

// DocumentType - вид документа.
type DocumentType string

const (
	DocumentPassport    DocumentType = "passport"
	DocumentVisa        DocumentType = "visa"
	DocumentTicket      DocumentType = "ticket"
	DocumentReservation DocumentType = "reservation"
	DocumentInsurance   DocumentType = "insurance"
	DocumentItinerary   DocumentType = "itinerary"
	DocumentOther       DocumentType = "other"
)

// Valid сообщает, что тип известен.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentPassport, DocumentVisa, DocumentTicket, DocumentReservation,
		DocumentInsurance, DocumentItinerary, DocumentOther:
		return true
	}
	return false
}

// Document - загруженный файл, привязанный к отпуску.
// FileKey - ключ объекта в файловом хранилище.
type Document struct {
	ID             string       `db:"id" json:"id"`
	VacationID     string       `db:"vacation_id" json:"vacationId"`
	UserID         string       `db:"user_id" json:"userId"`
	Name           string       `db:"name" json:"name"`
	Type           DocumentType `db:"type" json:"type"`
	FileKey        string       `db:"file_key" json:"fileName"`
	FileURL        string       `db:"file_url" json:"fileUrl"`
	FileSize       int64        `db:"file_size" json:"fileSize"`
	MimeType       string       `db:"mime_type" json:"mimeType"`
	ExpirationDate *Date        `db:"expiration_date" json:"expirationDate"`
	SharedWith     StringList   `db:"shared_with" json:"sharedWith"`
	Notes          string       `db:"notes" json:"notes"`
	CreatedAt      time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updatedAt"`
}

// DocumentPatch - частичное обновление метаданных документа.
type DocumentPatch struct {
	Name           *string       `json:"name,omitempty"`
	Type           *DocumentType `json:"type,omitempty"`
	ExpirationDate *Date         `json:"expirationDate,omitempty"`
	SharedWith     *StringList   `json:"sharedWith,omitempty"`
	Notes          *string       `json:"notes,omitempty"`
}

// Apply применяет патч к документу.
func (d *Document) Apply(p DocumentPatch) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Type != nil {
		d.Type = *p.Type
	}
	if p.ExpirationDate != nil {
		if p.ExpirationDate.IsZero() {
			d.ExpirationDate = nil
		} else {
			exp := *p.ExpirationDate
			d.ExpirationDate = &exp
		}
	}
	if p.SharedWith != nil {
		d.SharedWith = *p.SharedWith
	}
	if p.Notes != nil {
		d.Notes = *p.Notes
	}
}
