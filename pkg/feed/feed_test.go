package feed

import (
	"strings"
	"testing"

	"sts/models"

	"github.com/google/uuid"
)

const samplePayload = `{
  "_embedded": {
    "transactions": [
      {
        "id": "5bb9f6f2-3c2b-4fc9-9b4f-8f02b1f3a001",
        "amount": -12.5,
        "direction": "OUTBOUND",
        "created": "2024-03-05T08:12:00Z",
        "narrative": "TfL",
        "source": "MASTER_CARD"
      },
      {
        "id": "5bb9f6f2-3c2b-4fc9-9b4f-8f02b1f3a002",
        "amount": 2500,
        "direction": "NONE",
        "created": "2024-02-28T00:00:00Z",
        "narrative": "ACME PAYROLL",
        "source": "FASTER_PAYMENTS_IN"
      },
      {
        "id": "5bb9f6f2-3c2b-4fc9-9b4f-8f02b1f3a003",
        "amount": -3,
        "created": "2024-03-06T09:00:00Z",
        "narrative": "no source, dropped"
      }
    ]
  }
}`

func TestParse(t *testing.T) {
	transactions, err := Parse(strings.NewReader(samplePayload))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("expected 2 transactions (sourceless dropped) got %d", len(transactions))
	}
	if transactions[0].Narrative != "TfL" || transactions[0].Source != models.SourceMasterCard {
		t.Fatalf("first transaction mangled: %+v", transactions[0])
	}
	// Direction is normalized to the amount's sign, whatever the feed said.
	if transactions[0].Direction != models.DirectionOutbound {
		t.Fatalf("expected OUTBOUND got %s", transactions[0].Direction)
	}
	if transactions[1].Direction != models.DirectionInbound {
		t.Fatalf("expected NONE to be corrected to INBOUND, got %s", transactions[1].Direction)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse(strings.NewReader("not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

type recordingStore struct {
	saved []models.Transaction
}

func (r *recordingStore) SaveTransaction(tx *models.Transaction) error {
	r.saved = append(r.saved, *tx)
	return nil
}

func TestImportAssignsUser(t *testing.T) {
	store := &recordingStore{}
	n, err := NewImporter(store).Import(7, strings.NewReader(samplePayload))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 || len(store.saved) != 2 {
		t.Fatalf("expected 2 saved got n=%d saved=%d", n, len(store.saved))
	}
	for _, tx := range store.saved {
		if tx.UserID != 7 {
			t.Fatalf("transaction not assigned to user: %+v", tx)
		}
		if tx.ID == uuid.Nil {
			t.Fatalf("transaction saved without id")
		}
	}
}

func TestUserIDFromFilename(t *testing.T) {
	id, err := UserIDFromFilename("/var/feeds/42_march.json")
	if err != nil || id != 42 {
		t.Fatalf("expected 42 got %d err=%v", id, err)
	}
	if _, err := UserIDFromFilename("/var/feeds/march.json"); err == nil {
		t.Fatalf("expected error for missing user prefix")
	}
	if _, err := UserIDFromFilename("/var/feeds/abc_march.json"); err == nil {
		t.Fatalf("expected error for non-numeric user prefix")
	}
}
