package domain

// Page is one entry of the import table: a category and the text block
// listing its sources. Exactly one of Text and File supplies the block;
// once loaded, Text always holds it.
type Page struct {
	Key  string `koanf:"key" json:"key"`
	Name string `koanf:"name" json:"name"`
	Text string `koanf:"text" json:"text,omitempty"`
	File string `koanf:"file" json:"file,omitempty"`
}

// DisplayName is the category name to use when the category must be created
func (p Page) DisplayName() string {
	if p.Name == "" {
		return p.Key
	}
	return p.Name
}
