package testing

// Directory is the iteration surface of a directory handle.
type Directory[T any] interface {
	Next() bool
	IsDir() bool
	IsParent() bool
	Err() error
	Sub() (T, error)
	Close() error
}

// GetFileAndFolderCounts walks the tree below root and counts the folders and
// files in it. Parent links are skipped and root itself is not counted.
func GetFileAndFolderCounts[T Directory[T]](root T) (int, int, error) {
	var folderCount, fileCount int

	// Function needs to be declared before it is assigned to the anonymous function so that it can
	// be called recursively.
	var walk func(d T) error

	walk = func(d T) error {
		for d.Next() {
			if d.IsParent() {
				continue
			}
			if !d.IsDir() {
				fileCount++
				continue
			}
			folderCount++
			sub, err := d.Sub()
			if err != nil {
				return err
			}
			err = walk(sub)
			sub.Close()
			if err != nil {
				return err
			}
		}
		return d.Err()
	}

	err := walk(root)
	return folderCount, fileCount, err
}
