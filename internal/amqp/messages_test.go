package amqp

import (
	"testing"

	"nutridash/internal/core"
)

func TestMealInsertedMessageRoundTrip(t *testing.T) {
	msg := NewMealInsertedMessage("1", core.RawRecord{
		"ID":       "m1",
		"Date":     "2025-11-05T08:30:00",
		"Name":     "Oatmeal with Berries",
		"Calories": 350.0,
	})
	if msg.Timestamp.IsZero() {
		t.Fatal("constructor should stamp the message")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	got, err := MealInsertedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}

	if got.UserID != "1" {
		t.Fatalf("UserID = %q, expected 1", got.UserID)
	}
	// The record travels loosely; the consumer's normalizer must still
	// find the fields whatever their casing.
	if got.Record.Text(core.FieldName) != "Oatmeal with Berries" {
		t.Fatalf("record name lost in transit: %+v", got.Record)
	}
	if got.Record.Number(core.FieldCalories) != 350 {
		t.Fatalf("record calories lost in transit: %+v", got.Record)
	}
}

func TestMealInsertedMessageFromJSONMalformed(t *testing.T) {
	if _, err := MealInsertedMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
