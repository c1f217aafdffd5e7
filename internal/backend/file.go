package backend

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "strings"

    "github.com/biketag/biketag-go/internal/biketag"
    "github.com/biketag/biketag-go/internal/extract"
)

// File serves tags from a local JSON export of album posts, for offline runs
// and tests. The file is an array of objects:
// {"title": "...", "description": "...", "link": "..."}.
type File struct {
    Path    string
    Extract *extract.Extractor
}

func (f *File) Name() string { return "file" }

func (f *File) GetTag(_ context.Context, opts Options) (biketag.Tag, error) {
    posts, err := f.Posts()
    if err != nil {
        return biketag.Tag{}, err
    }
    e := extractorOrDefault(f.Extract)
    number := opts.TagNumber
    if number == 0 {
        number = e.TagNumberFromSlug(opts.Slug, 0)
    }
    t, ok := mapAlbum(e, posts, number)
    if number == 0 || !ok {
        return biketag.Tag{}, fmt.Errorf("file tag %d: %w", number, ErrTagNotFound)
    }
    return finish(t, opts), nil
}

// Posts loads every post in the file.
func (f *File) Posts() ([]Post, error) {
    if strings.TrimSpace(f.Path) == "" {
        return nil, errors.New("file backend path is empty")
    }
    b, err := os.ReadFile(f.Path)
    if err != nil {
        return nil, err
    }
    var posts []Post
    if err := json.Unmarshal(b, &posts); err != nil {
        return nil, fmt.Errorf("parse %s: %w", f.Path, err)
    }
    return posts, nil
}

// TagNumbers lists every tag number mentioned in the file's descriptions, in
// first-seen order.
func (f *File) TagNumbers() ([]int, error) {
    posts, err := f.Posts()
    if err != nil {
        return nil, err
    }
    e := extractorOrDefault(f.Extract)
    var out []int
    seen := map[int]bool{}
    for _, p := range posts {
        for _, n := range e.TagNumbersFromText(extract.PlainText(p.Description), nil) {
            if !seen[n] {
                seen[n] = true
                out = append(out, n)
            }
        }
    }
    return out, nil
}
