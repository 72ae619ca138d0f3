package pagination

import "testing"

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "123", CreatedAt: "2025-06-01T12:00:00Z"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	cursor, err := DecodeCursor(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cursor.ID != "123" || cursor.CreatedAt != "2025-06-01T12:00:00Z" {
		t.Fatalf("cursor = %+v", cursor)
	}

	if _, err := DecodeCursor("not base64!!"); err == nil {
		t.Fatal("garbage token decoded")
	}
}

func TestBuildCursorPageInfo(t *testing.T) {
	type row struct{ ID string }
	extract := func(r *row) string { return r.ID }

	full := []*row{{"1"}, {"2"}, {"3"}}
	info := BuildCursorPageInfo(full, 2, extract)
	if info == nil || !info.HasMore {
		t.Fatalf("info = %+v, want has_more", info)
	}
	if info.NextPageToken != "2" {
		t.Fatalf("next token from %q, want row 2", info.NextPageToken)
	}

	short := []*row{{"1"}}
	info = BuildCursorPageInfo(short, 2, extract)
	if info == nil || info.HasMore {
		t.Fatalf("info = %+v, want no more", info)
	}

	info = BuildCursorPageInfo(nil, 2, extract)
	if info == nil || info.HasMore || info.NextPageToken != "" {
		t.Fatalf("info = %+v for empty page", info)
	}
}
