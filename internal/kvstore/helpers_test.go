package kvstore

import "os"

func writeRaw(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func listDir(dir string) ([]os.DirEntry, error) {
	return os.ReadDir(dir)
}
