package entity

type DocumentRecord struct {
	Filename string
	Id       string
}

type DocumentCitation struct {
	Document string `json:"document"`
	Pages    []int  `json:"pages"`
}

type WebCitation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}
