package fileindex

// DuplicatePair names two distinct paths holding identical content: Path from
// the index FindDuplicates was called with, Match from the receiver. Pairs
// are produced on demand and never persisted.
type DuplicatePair struct {
	Path  string `json:"path"`
	Match string `json:"match"`
}

// FindDuplicates compares another index against this one and returns a pair
// for every hash collision. For each entry in other, every path in this index
// with the same hash is matched; a byte-identical path never pairs with
// itself, even when other is the receiver. Pairing is asymmetric: only
// other's entries drive the outer loop, so three files sharing a hash across
// the two indexes do not produce the full pairwise closure. Pairs are ordered
// by other's path, then by match path.
func (idx *Index) FindDuplicates(other *Index) []DuplicatePair {
	pairs := []DuplicatePair{}

	for _, path := range other.Paths() {
		hash := other.entries[path]
		for _, match := range idx.FindByHash(hash) {
			if match == path {
				continue
			}
			pairs = append(pairs, DuplicatePair{Path: path, Match: match})
		}
	}

	return pairs
}
