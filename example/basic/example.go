package example

import (
	"embed"

	"github.com/rdnformat/rdn"
	"github.com/rdnformat/rdn/rdnparser"
)

//go:embed *.rdn
var rdnfs embed.FS

// Config is the embedded configuration document, validated once at startup.
var Config = mustParse("config.rdn")

func mustParse(name string) *rdn.Document {
	data, err := rdnfs.ReadFile(name)
	if err != nil {
		panic(err)
	}
	doc, err := rdn.Parse(data, rdn.Options{CommentHandling: rdnparser.CommentsSkip})
	if err != nil {
		panic(err)
	}
	return doc
}
