package codec

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/growth-dashboard/internal/domain"
)

// MarshalItem encodes one item as its JSON record.
func MarshalItem(item domain.Item) ([]byte, error) {
	record := ItemRecord(item)
	if record == nil {
		return nil, fmt.Errorf("%w: unsupported item %T", domain.ErrInvalidItem, item)
	}

	return json.Marshal(record)
}

// UnmarshalItem decodes a JSON record of the given kind.
func UnmarshalItem(kind domain.Kind, data []byte) (domain.Item, error) {
	switch kind {
	case domain.KindReading:
		var r BookRecord
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode %s record: %w", kind, err)
		}
		return r.toDomain(), nil
	case domain.KindJob:
		var r JobRecord
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode %s record: %w", kind, err)
		}
		return r.toDomain(), nil
	case domain.KindVocabulary:
		var r WordRecord
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode %s record: %w", kind, err)
		}
		return r.toDomain(), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
}
