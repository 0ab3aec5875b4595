package enums

import "fmt"

// OrderFolder names the partitions an order can live in. Orders are never
// hard-deleted; deletion moves the record into the deleted partition.
type OrderFolder string

const (
	OrderFolderOrders  OrderFolder = "orders"
	OrderFolderArchive OrderFolder = "archive"
	OrderFolderDeleted OrderFolder = "deleted"
)

var validOrderFolders = []OrderFolder{
	OrderFolderOrders,
	OrderFolderArchive,
	OrderFolderDeleted,
}

// String implements fmt.Stringer.
func (f OrderFolder) String() string {
	return string(f)
}

// IsValid reports whether the folder is one of the three partitions.
func (f OrderFolder) IsValid() bool {
	for _, candidate := range validOrderFolders {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseOrderFolder converts raw input into an OrderFolder.
func ParseOrderFolder(value string) (OrderFolder, error) {
	for _, candidate := range validOrderFolders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order folder %q", value)
}
