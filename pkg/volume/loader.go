package volume

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"ctcontour/internal/models"
)

// labelFilePattern matches the LiTS label naming convention,
// segmentation-<index>.nii with optional gzip compression.
var labelFilePattern = regexp.MustCompile(`^segmentation-(\d+)\.nii(\.gz)?$`)

// envLabelDir overrides the dataset root when set.
const envLabelDir = "LITS_TRAIN_LABEL_DIR"

// ResolveRoot resolves the dataset root directory. An explicitly configured
// value wins; otherwise the environment variable is consulted, then the
// conventional location under the user's home directory.
func ResolveRoot(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if dir := os.Getenv(envLabelDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving dataset root: %w", err)
	}
	return filepath.Join(home, "dataset", "train", "label"), nil
}

// labelFile is one discovered volume file, keyed by its dataset index.
type labelFile struct {
	index int
	path  string
}

// Loader discovers and loads the label volumes under a dataset root.
type Loader struct {
	root  string
	files []labelFile
}

// NewLoader scans root for label volumes. An invalid or empty root is a
// configuration error and therefore fatal to the batch.
func NewLoader(root string, maxVolumes int) (*Loader, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("invalid dataset root %s: %w", root, err)
	}

	var files []labelFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := labelFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		files = append(files, labelFile{
			index: index,
			path:  filepath.Join(root, entry.Name()),
		})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no segmentation-<n>.nii volumes under %s", root)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].index < files[j].index })
	if maxVolumes > 0 && len(files) > maxVolumes {
		files = files[:maxVolumes]
	}

	return &Loader{root: root, files: files}, nil
}

// VolumeCount returns the number of discovered label volumes.
func (l *Loader) VolumeCount() int {
	return len(l.files)
}

// Load decodes every discovered volume and binarizes it slice by slice.
// A volume that fails to decode is logged and skipped; input errors are
// per-image, never fatal to the batch.
func (l *Loader) Load(threshold uint8, log zerolog.Logger) []models.Slice {
	var slices []models.Slice

	for _, file := range l.files {
		vol, err := OpenLabel(file.path)
		if err != nil {
			log.Warn().
				Int("volume", file.index).
				Err(err).
				Msg("skipping undecodable volume")
			continue
		}

		_, _, depth := vol.Dims()
		for z := 0; z < depth; z++ {
			g, err := vol.MaskSlice(z, threshold)
			if err != nil {
				log.Warn().
					Int("volume", file.index).
					Int("slice", z).
					Err(err).
					Msg("skipping slice")
				continue
			}
			slices = append(slices, models.Slice{
				Grid:   g,
				Volume: file.index,
				Index:  z,
			})
		}

		log.Info().
			Int("volume", file.index).
			Int("slices", depth).
			Msg("volume loaded")
	}

	return slices
}
