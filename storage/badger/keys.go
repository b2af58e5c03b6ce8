package badger

import "fmt"

// Key prefixes for different data types
const (
	collectionMetaPrefix = "colmeta"
	collectionDocPrefix  = "coldoc"
)

// makeMetaKey generates the manifest key for a collection.
func makeMetaKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s", collectionMetaPrefix, name))
}

// makeDocKey generates the key for a document entry within a collection.
func makeDocKey(name, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", collectionDocPrefix, name, id))
}

// makeDocScanPrefix generates the iteration prefix covering every entry of a
// collection. The trailing separator keeps collections with a shared name
// prefix apart.
func makeDocScanPrefix(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", collectionDocPrefix, name))
}

// validCollectionName reports whether a collection name is key-safe:
// [a-zA-Z0-9_-]+, no separator characters.
func validCollectionName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !isDigit && r != '_' && r != '-' {
			return false
		}
	}
	return true
}
