package gallery

import (
	"strings"

	"comic-gallery/internal/filesystem"
	"comic-gallery/internal/mediatypes"
)

// Associator decides which images in a group directory belong to an item.
type Associator interface {
	ImagesForItem(groupDir, itemName string) []string
}

// PrefixAssociator matches images whose file name starts with the item name,
// ignoring case. When nothing matches it returns every image in the
// directory so an item is never shown empty while its group has pictures.
type PrefixAssociator struct{}

// ImagesForItem returns sorted image file names for itemName in groupDir.
// A missing or unreadable directory yields an empty slice.
func (PrefixAssociator) ImagesForItem(groupDir, itemName string) []string {
	images := listImages(groupDir)
	if len(images) == 0 {
		return []string{}
	}

	prefix := strings.ToLower(itemName)
	matched := make([]string, 0, len(images))
	for _, name := range images {
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			matched = append(matched, name)
		}
	}
	if len(matched) == 0 {
		return images
	}
	return matched
}

func listImages(dir string) []string {
	names, err := filesystem.ListFiles(dir)
	if err != nil {
		return nil
	}
	return mediatypes.FilterImages(names)
}

func firstOrEmpty(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
