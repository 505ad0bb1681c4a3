package rag

// candidate is the canonical form a raw index payload is normalized into
// before fusion.
type candidate struct {
	chunkID  string
	text     string
	document string
}

// normalizePayload extracts chunk id, text and source document from a raw
// payload by trying a fixed, ordered set of known shapes: flat fields first,
// then the nested metadata layout some ingestion paths produce. A payload that
// yields no chunk id or no text under either shape fails closed (nil).
func normalizePayload(payload map[string]interface{}) *candidate {
	if len(payload) == 0 {
		return nil
	}

	chunkID := stringField(payload, "chunk_id")
	text := stringField(payload, "text")
	if text == "" {
		text = stringField(payload, "page_content")
	}
	document := stringField(payload, "filename")

	if meta, ok := payload["metadata"].(map[string]interface{}); ok {
		if chunkID == "" {
			chunkID = stringField(meta, "chunk_id")
		}
		if text == "" {
			text = stringField(meta, "text")
		}
		if document == "" {
			document = stringField(meta, "filename")
		}
	}

	if chunkID == "" || text == "" {
		return nil
	}
	if document == "" {
		document = "Unknown"
	}

	return &candidate{chunkID: chunkID, text: text, document: document}
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
