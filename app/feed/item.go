package feed

const FieldAuthor = "author"

// Item is a single feed entry.
type Item struct {
	Node
	Author string
}

func NewItem() *Item {
	return &Item{}
}

func (i *Item) Set(name, value string) error {
	if name == FieldAuthor {
		i.Author = value
		return nil
	}
	return i.Node.Set(name, value)
}

func (i *Item) GetValue(name string) (string, bool) {
	if name == FieldAuthor {
		return i.Author, true
	}
	return i.Node.GetValue(name)
}

func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	return &Item{
		Node:   i.Node.clone(),
		Author: i.Author,
	}
}
