// Package feed ingests exported bank transaction payloads: a HAL envelope
// with the transaction list under _embedded. Ingest is idempotent: the
// bank's transaction UUID is the primary key, so replaying a payload never
// duplicates rows.
package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"sts/models"

	"github.com/google/uuid"
)

// Payload is the wire envelope of a feed export.
type Payload struct {
	Embedded struct {
		Transactions []Transaction `json:"transactions"`
	} `json:"_embedded"`
}

// Transaction is one feed entry. Source is optional in older exports.
type Transaction struct {
	ID        uuid.UUID                   `json:"id"`
	Amount    float64                     `json:"amount"`
	Direction models.TransactionDirection `json:"direction"`
	Created   time.Time                   `json:"created"`
	Narrative string                      `json:"narrative"`
	Source    models.TransactionSource    `json:"source"`
}

// Parse decodes a feed payload into transactions ready to persist. Entries
// without a source code are dropped: they cannot be classified and the next
// full export will carry them. The direction is normalized to agree with the
// amount's sign.
func Parse(r io.Reader) ([]models.Transaction, error) {
	var payload Payload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("feed: decoding payload: %w", err)
	}

	out := make([]models.Transaction, 0, len(payload.Embedded.Transactions))
	for _, entry := range payload.Embedded.Transactions {
		if entry.Source == "" {
			continue
		}
		id := entry.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		out = append(out, models.Transaction{
			ID:        id,
			Amount:    entry.Amount,
			Direction: models.DirectionForAmount(entry.Amount),
			Created:   entry.Created,
			Narrative: entry.Narrative,
			Source:    entry.Source,
		})
	}
	return out, nil
}

// TransactionStore is the slice of the repository the importer needs.
type TransactionStore interface {
	SaveTransaction(t *models.Transaction) error
}

// Importer persists parsed feed files for their users.
type Importer struct {
	store TransactionStore
}

// NewImporter returns an Importer writing through the given store.
func NewImporter(store TransactionStore) *Importer {
	return &Importer{store: store}
}

// Import parses the payload and persists every entry for the user,
// returning the number of entries processed.
func (im *Importer) Import(userID uint, r io.Reader) (int, error) {
	transactions, err := Parse(r)
	if err != nil {
		return 0, err
	}
	for i := range transactions {
		transactions[i].UserID = userID
		if err := im.store.SaveTransaction(&transactions[i]); err != nil {
			return i, fmt.Errorf("feed: saving transaction %s: %w", transactions[i].ID, err)
		}
	}
	return len(transactions), nil
}

// ImportFile imports one drop-directory file. The owning user is encoded in
// the file name (see UserIDFromFilename).
func (im *Importer) ImportFile(path string) (uint, int, error) {
	userID, err := UserIDFromFilename(path)
	if err != nil {
		return 0, 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("feed: opening %s: %w", path, err)
	}
	defer f.Close()
	n, err := im.Import(userID, f)
	return userID, n, err
}
