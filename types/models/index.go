package models

// IndexPageData is a struct to hold info for the main web page
type IndexPageData struct {
	Address        string `json:"address"`
	ExampleAddress string `json:"example_address"`
	ErrorMessage   string `json:"error_message"`
	Warning        bool   `json:"warning"`
}
