package export

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PatchVMF inserts prop entities for parts 1..partCount-1 of a
// partitioned model into a VMF document. The document must already
// hold a template: an entity whose "model" value references
// <baseName>_part_000. Each inserted entity is a byte-level clone of
// the template with the part suffix substituted and a fresh "id"
// (above every id in the document, at any depth). Everything outside
// the inserted clones is preserved byte for byte.
//
// Returns ErrNoTemplate when the document has no matching entity.
func PatchVMF(data []byte, baseName string, partCount int) ([]byte, error) {
	if partCount < 1 {
		return nil, fmt.Errorf("export: invalid part count %d", partCount)
	}

	blocks, err := scanBlocks(data)
	if err != nil {
		return nil, err
	}

	template := baseName + "_part_000"
	var (
		tmpl   *kvBlock
		tmplID kvPair
	)
	for i := range blocks {
		if blocks[i].name != "entity" {
			continue
		}
		pairs, err := scanPairs(data, blocks[i].start, blocks[i].end)
		if err != nil {
			return nil, err
		}
		var model, id *kvPair
		for j := range pairs {
			switch pairs[j].key {
			case "model":
				model = &pairs[j]
			case "id":
				id = &pairs[j]
			}
		}
		if model == nil || !refersToTemplate(model.value, template) {
			continue
		}
		if id == nil {
			return nil, fmt.Errorf("export: template entity for %s has no id", template)
		}
		tmpl = &blocks[i]
		tmplID = *id
		break
	}
	if tmpl == nil {
		return nil, fmt.Errorf("export: %s: %w", template, ErrNoTemplate)
	}

	maxID := maxDocumentID(data)

	var out bytes.Buffer
	out.Write(data[:tmpl.end])
	for part := 1; part < partCount; part++ {
		clone := cloneEntity(data, *tmpl, tmplID, maxID+part, baseName, part)
		out.WriteByte('\n')
		out.Write(clone)
	}
	out.Write(data[tmpl.end:])
	return out.Bytes(), nil
}

// PatchVMFFile applies PatchVMF to a file in place. On any error,
// including a missing template, the file is left untouched.
func PatchVMFFile(path, baseName string, partCount int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("export: read map: %w", err)
	}
	patched, err := PatchVMF(data, baseName, partCount)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, patched)
}

// refersToTemplate reports whether a model path references the
// template part name. The name must start the path or follow a
// separator; "max_part_000.mdl" is not a reference to template
// "x_part_000".
func refersToTemplate(value, template string) bool {
	for i := 0; ; i++ {
		j := strings.Index(value[i:], template)
		if j < 0 {
			return false
		}
		i += j
		if i == 0 || value[i-1] == '/' || value[i-1] == '\\' {
			return true
		}
	}
}

// cloneEntity copies the template block, splicing in the fresh entity
// id first (by span, before any text shifts) and the part suffix
// second.
func cloneEntity(data []byte, tmpl kvBlock, id kvPair, newID int, baseName string, part int) []byte {
	var b bytes.Buffer
	b.Write(data[tmpl.start:id.valStart])
	b.WriteString(strconv.Itoa(newID))
	b.Write(data[id.valEnd:tmpl.end])

	oldRef := baseName + "_part_000"
	newRef := fmt.Sprintf("%s_part_%03d", baseName, part)
	return replaceTemplateRefs(b.Bytes(), oldRef, newRef)
}

// replaceTemplateRefs substitutes the part suffix with the same
// boundary rule as refersToTemplate, so a longer model name embedding
// the base name is left alone.
func replaceTemplateRefs(b []byte, oldRef, newRef string) []byte {
	var out bytes.Buffer
	i := 0
	for {
		j := bytes.Index(b[i:], []byte(oldRef))
		if j < 0 {
			out.Write(b[i:])
			return out.Bytes()
		}
		j += i
		if j == 0 || b[j-1] == '/' || b[j-1] == '\\' || b[j-1] == '"' {
			out.Write(b[i:j])
			out.WriteString(newRef)
			i = j + len(oldRef)
		} else {
			out.Write(b[i : j+1])
			i = j + 1
		}
	}
}

// maxDocumentID scans every "id" pair in the document, at any nesting
// depth, and returns the largest value. Side and solid blocks carry
// their own ids, so the entity scan alone is not enough to pick a
// fresh one.
func maxDocumentID(data []byte) int {
	maxID := 0
	i := 0
	for i < len(data) {
		if data[i] != '"' {
			i++
			continue
		}
		keyEnd, err := matchQuote(data, i)
		if err != nil {
			break
		}
		key := string(data[i+1 : keyEnd-1])
		j := keyEnd
		for j < len(data) && isKVSpace(data[j]) {
			j++
		}
		if j >= len(data) || data[j] != '"' {
			i = keyEnd
			continue
		}
		valEnd, err := matchQuote(data, j)
		if err != nil {
			break
		}
		if key == "id" {
			if v, err := strconv.Atoi(string(data[j+1 : valEnd-1])); err == nil && v > maxID {
				maxID = v
			}
		}
		i = valEnd
	}
	return maxID
}
