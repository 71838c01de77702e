package analysis

import "context"

// Provider port (interface untuk layanan AI eksternal)
type Provider interface {
	Name() string
	Configured() bool
	DescribeImage(ctx context.Context, img Image, focus string) (Output, error)
	SummarizeDocument(ctx context.Context, doc Document) (Output, error)
}

// LocalAnalyzer is the offline last resort. It must not fail and must not do I/O.
type LocalAnalyzer interface {
	Name() string
	DescribeImage(img Image, focus string) Output
	SummarizeDocument(doc Document) Output
}

// Page is readable text extracted from a web page.
type Page struct {
	URL   string
	Title string
	Text  string
}

// PageFetcher port (interface untuk ambil konten URL)
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}
