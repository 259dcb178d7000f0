package core

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON serializes the slot as the item it carries. The mobile
// client distinguishes item kinds by the "type" field on the object
// itself, so the union wrapper is invisible on the wire.
func (f FlexibleItem) MarshalJSON() ([]byte, error) {
	switch f.Kind {
	case ItemTypeQuiz:
		if f.Quiz == nil {
			return nil, fmt.Errorf("quiz slot has no quiz item")
		}
		return json.Marshal(*f.Quiz)
	case ItemTypeContent, ItemTypeQuote:
		if f.Content == nil {
			return nil, fmt.Errorf("%s slot has no content item", f.Kind)
		}
		return json.Marshal(*f.Content)
	default:
		return nil, fmt.Errorf("unknown flexible item kind %q", f.Kind)
	}
}

// UnmarshalJSON restores the union from its wire form by inspecting the
// "type" discriminator.
func (f *FlexibleItem) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type ItemType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	switch probe.Type {
	case ItemTypeQuiz:
		var quiz QuizItem
		if err := json.Unmarshal(data, &quiz); err != nil {
			return err
		}
		f.Kind = ItemTypeQuiz
		f.Quiz = &quiz
		f.Content = nil
	case ItemTypeContent, ItemTypeQuote:
		var content ContentItem
		if err := json.Unmarshal(data, &content); err != nil {
			return err
		}
		f.Kind = probe.Type
		f.Content = &content
		f.Quiz = nil
	default:
		return fmt.Errorf("unknown flexible item type %q", probe.Type)
	}
	return nil
}
