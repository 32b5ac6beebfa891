package model

import (
	"fmt"
	"strconv"
	"strings"
)

// BuildLabel formats the barcode label for a unit: "{item_code}_{slot}".
// This is the wire contract for scanning.
func BuildLabel(itemCode string, slot int) string {
	return fmt.Sprintf("%s_%d", itemCode, slot)
}

// ParseLabel splits a scanned label into item code and slot. Item codes
// may themselves contain underscores (e.g. "CFA_SAUCE_1"), so the split
// is on the last underscore only.
func ParseLabel(label string) (itemCode string, slot int, err error) {
	label = strings.TrimSpace(label)
	i := strings.LastIndex(label, "_")
	if i <= 0 || i == len(label)-1 {
		return "", 0, fmt.Errorf("invalid label format %q: want itemcode_slot", label)
	}
	slot, err = strconv.Atoi(label[i+1:])
	if err != nil || slot < 1 {
		return "", 0, fmt.Errorf("invalid slot in label %q: want itemcode_slot", label)
	}
	return label[:i], slot, nil
}
