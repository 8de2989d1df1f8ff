package clustercache

import "reflect"

// isNil reports whether v is nil or a nil pointer/map/slice/interface/func/chan.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func validKey(param, key string) error {
	if key == "" {
		return &InvalidKeyError{Param: param, Index: -1}
	}
	return nil
}

func validKeys(param string, keys []string) error {
	if keys == nil {
		return &InvalidKeyError{Param: param, Index: -1}
	}
	for i, k := range keys {
		if k == "" {
			return &InvalidKeyError{Param: param, Index: i}
		}
	}
	return nil
}

func validItem[V any](v V) error {
	if isNil(any(v)) {
		return &InvalidItemError{Param: "item", Index: -1}
	}
	return nil
}

func validItems[V any](items []V) error {
	if items == nil {
		return &InvalidItemError{Param: "items", Index: -1}
	}
	for i, v := range items {
		if isNil(any(v)) {
			return &InvalidItemError{Param: "items", Index: i}
		}
	}
	return nil
}

// validItemMap checks a keyed bulk argument: non-nil map, non-empty keys,
// non-nil values. keyParam names the key kind ("key" or "field").
func validItemMap[V any](keyParam string, items map[string]V) error {
	if items == nil {
		return &InvalidItemError{Param: "items", Index: -1}
	}
	for k, v := range items {
		if k == "" {
			return &InvalidKeyError{Param: keyParam, Index: -1}
		}
		if isNil(any(v)) {
			return &InvalidItemError{Param: "items", Index: -1, Key: k}
		}
	}
	return nil
}
