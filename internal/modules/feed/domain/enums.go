//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Format is the syndication format a category is exported as
// ENUM(rss,atom,json)
type Format string
