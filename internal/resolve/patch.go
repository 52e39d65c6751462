package resolve

import (
	"fmt"

	"github.com/sprite-ai/warnctx/internal/model"
)

// FindModifiedFile returns the file of c whose effective path equals target
// after separator normalization.
func FindModifiedFile(c *model.Commit, target string) (*model.ModifiedFile, error) {
	want := model.NormalizePath(target)
	for _, mf := range c.Files {
		if model.NormalizePath(mf.EffectivePath()) == want {
			return mf, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrFileNotModified, want, c.Hash)
}

// ExtractPatch builds the added/deleted line lists of mf. For an added file
// the added lines are dropped: the whole file is its after-change source,
// which can be fetched again, and an added file has nothing deleted.
func ExtractPatch(mf *model.ModifiedFile) *model.Patch {
	p := &model.Patch{
		Added:      make([]model.LineText, 0),
		Deleted:    make([]model.LineText, 0),
		ChangeType: mf.ChangeType,
	}

	for _, h := range mf.Hunks {
		lt := model.LineText{Line: h.Line, Text: h.Text}
		if h.Kind == model.HunkDeleted {
			p.Deleted = append(p.Deleted, lt)
		} else {
			p.Added = append(p.Added, lt)
		}
	}

	if mf.ChangeType == model.ChangeAdd {
		p.Added = p.Added[:0]
	}
	return p
}
