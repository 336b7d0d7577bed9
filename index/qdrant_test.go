package index

import (
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
)

func TestPointUUIDIsDeterministic(t *testing.T) {
	a := PointUUID("spitfire_general_info")
	b := PointUUID("spitfire_general_info")
	if a != b {
		t.Fatalf("expected stable uuid, got %s and %s", a, b)
	}

	if a == PointUUID("spitfire_stat_speed") {
		t.Fatal("expected distinct uuids for distinct record ids")
	}
}

func TestRecordFromPayloadRoundTrip(t *testing.T) {
	payload := map[string]*pb.Value{
		payloadRecordID:   stringValue("spitfire_stat_speed"),
		payloadItemName:   stringValue("Spitfire"),
		payloadEntityType: stringValue("aircraft"),
		payloadInfoType:   stringValue("stat_speed"),
		payloadSourceText: stringValue("The Spitfire reaches 230 mph."),
		payloadMetadata:   stringValue(`{"unit":"mph","non_upgraded_value":230}`),
	}

	rec, err := recordFromPayload(payload)
	if err != nil {
		t.Fatalf("recordFromPayload: %v", err)
	}

	if rec.ID != "spitfire_stat_speed" || rec.ItemName != "Spitfire" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Metadata["unit"] != "mph" {
		t.Fatalf("unexpected metadata: %+v", rec.Metadata)
	}
	if rec.Metadata["non_upgraded_value"] != float64(230) {
		t.Fatalf("expected numeric metadata as float64, got %T", rec.Metadata["non_upgraded_value"])
	}
}

func TestRecordFromPayloadRejectsBadMetadata(t *testing.T) {
	payload := map[string]*pb.Value{
		payloadRecordID: stringValue("x"),
		payloadMetadata: stringValue("{not json"),
	}

	if _, err := recordFromPayload(payload); err == nil {
		t.Fatal("expected error for malformed metadata json")
	}
}

func TestRecordFromPayloadMissingMetadata(t *testing.T) {
	payload := map[string]*pb.Value{
		payloadRecordID: stringValue("x"),
	}

	rec, err := recordFromPayload(payload)
	if err != nil {
		t.Fatalf("recordFromPayload: %v", err)
	}
	if rec.Metadata != nil {
		t.Fatalf("expected nil metadata, got %+v", rec.Metadata)
	}
}
