package codec

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ukaji3/exselect-go/pkg/exselect"
	"github.com/ukaji3/exselect-go/pkg/exselect/models"
)

// DecodeFile decodes the spreadsheet at path.
func DecodeFile(path string, opts DecodeOptions) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", exselect.ErrFileNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	if opts.Name == "" {
		opts.Name = filepath.Base(path)
	}
	return Decode(f, opts)
}
