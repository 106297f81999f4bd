package service

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ar-model-dashboard/models"
	"ar-model-dashboard/utils"
)

// pageShape is the upstream response layout of a whole page
type pageShape int

const (
	// shapeFlattened is the Strapi 5 layout: fields at the top level, optional documentId
	shapeFlattened pageShape = iota
	// shapeNested is the Strapi 4 layout: { id, attributes: {...} } with relations under data
	shapeNested
)

func (s pageShape) String() string {
	if s == shapeNested {
		return "nested"
	}
	return "flattened"
}

// rawObject is a JSON object whose members are decoded on demand
type rawObject map[string]json.RawMessage

// groupDecoder turns one upstream item into a canonical group
type groupDecoder func(item rawObject, origin string) models.CatalogGroup

var groupDecoders = map[pageShape]groupDecoder{
	shapeNested:    decodeNestedGroup,
	shapeFlattened: decodeFlattenedGroup,
}

// NormalizeCatalogPage converts a raw upstream page of either shape into the canonical model.
// Only an unparseable envelope is an error; defective records degrade field by field.
func NormalizeCatalogPage(body []byte, origin string) (models.CatalogPage, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
		Meta json.RawMessage `json:"meta"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return models.CatalogPage{}, &UpstreamFetchError{Err: fmt.Errorf("malformed catalog response: %w", err)}
	}

	var items []json.RawMessage
	if present(envelope.Data) {
		if err := json.Unmarshal(envelope.Data, &items); err != nil {
			return models.CatalogPage{}, &UpstreamFetchError{Err: fmt.Errorf("catalog data is not a list: %w", err)}
		}
	}

	meta := envelope.Meta
	if !present(meta) {
		meta = json.RawMessage(`{}`)
	}

	shape := detectShape(items)
	decode := groupDecoders[shape]
	log.Printf("🔍 Catalog page shape: %s (%d items)", shape, len(items))

	groups := make([]models.CatalogGroup, 0, len(items))
	for i, raw := range items {
		item := object(raw)
		if item == nil {
			log.Printf("⚠️  Skipping catalog item %d: not an object", i)
			continue
		}
		groups = append(groups, decode(item, origin))
	}

	return models.CatalogPage{Data: groups, Meta: meta}, nil
}

// detectShape decides the layout of the whole page from its first item.
// Empty pages are treated as flattened.
func detectShape(items []json.RawMessage) pageShape {
	if len(items) == 0 {
		return shapeFlattened
	}
	first := object(items[0])
	if first != nil && present(first["attributes"]) {
		return shapeNested
	}
	return shapeFlattened
}

func decodeNestedGroup(item rawObject, origin string) models.CatalogGroup {
	attrs := object(item["attributes"])

	group := models.CatalogGroup{
		ID:       utils.StableID(item["id"], ""),
		Name:     stringField(attrs["name"]),
		Variants: []models.CatalogVariant{},
	}

	relation := object(attrs["childrens"])
	for _, raw := range array(relation["data"]) {
		child := object(raw)
		if child == nil {
			continue
		}
		childAttrs := object(child["attributes"])
		group.Variants = append(group.Variants, models.CatalogVariant{
			ID:              utils.StableID(child["id"], ""),
			Name:            stringField(childAttrs["name"]),
			Slug:            stringField(childAttrs["slug_item"]),
			InStock:         boolField(childAttrs["in_stock"]),
			HeroImageURL:    mediaField(childAttrs["hero_image"], origin),
			IOSAssetURL:     mediaField(childAttrs["ar_model_ios"], origin),
			AndroidAssetURL: mediaField(childAttrs["ar_model_and"], origin),
		})
	}
	return group
}

func decodeFlattenedGroup(item rawObject, origin string) models.CatalogGroup {
	group := models.CatalogGroup{
		ID:       utils.StableID(item["id"], stringField(item["documentId"])),
		Name:     stringField(item["name"]),
		Variants: []models.CatalogVariant{},
	}

	rawChildren := item["childrens"]
	if !present(rawChildren) {
		rawChildren = object(item["attributes"])["childrens"]
	}

	for _, raw := range childList(rawChildren) {
		child := object(raw)
		if child == nil {
			continue
		}
		attrs := object(child["attributes"])
		field := func(key string) json.RawMessage {
			if v := child[key]; present(v) {
				return v
			}
			return attrs[key]
		}

		variant := models.CatalogVariant{
			ID:              utils.StableID(child["id"], stringField(child["documentId"])),
			Name:            stringField(field("name")),
			Slug:            stringField(field("slug_item")),
			InStock:         boolField(field("in_stock")),
			HeroImageURL:    mediaField(field("hero_image"), origin),
			IOSAssetURL:     mediaField(field("ar_model_ios"), origin),
			AndroidAssetURL: mediaField(field("ar_model_and"), origin),
		}
		if token, ok := jsonString(child["documentId"]); ok {
			variant.DocumentToken = token
		}
		group.Variants = append(group.Variants, variant)
	}
	return group
}

// childList accepts a bare list or a { data: [...] } wrapper
func childList(raw json.RawMessage) []json.RawMessage {
	if list := array(raw); list != nil {
		return list
	}
	return array(object(raw)["data"])
}

func mediaField(raw json.RawMessage, origin string) string {
	url, _ := utils.ResolveMediaURL(raw, origin)
	return url
}

func present(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null"
}

func object(raw json.RawMessage) rawObject {
	if !present(raw) {
		return nil
	}
	var obj rawObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

func array(raw json.RawMessage) []json.RawMessage {
	if !present(raw) {
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}

func jsonString(raw json.RawMessage) (string, bool) {
	if !present(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// stringField renders strings as-is and numbers as their literal text; anything else is ""
func stringField(raw json.RawMessage) string {
	if s, ok := jsonString(raw); ok {
		return s
	}
	var n json.Number
	if present(raw) && json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

func boolField(raw json.RawMessage) bool {
	if !present(raw) {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return b
}
