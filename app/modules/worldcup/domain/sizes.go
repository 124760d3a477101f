package worldcupdomain

// OfferedSizes are the bracket sizes offered to players, largest first.
var OfferedSizes = []int{16, 8, 4}

// MinPoolSize is the smallest pool a tournament can be started from.
const MinPoolSize = 4

// AvailableSizes filters OfferedSizes down to those poolSize can fill.
func AvailableSizes(poolSize int) []int {
	sizes := make([]int, 0, len(OfferedSizes))
	for _, s := range OfferedSizes {
		if poolSize >= s {
			sizes = append(sizes, s)
		}
	}
	return sizes
}
