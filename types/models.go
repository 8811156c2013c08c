package types

import "html/template"

// PageData is a struct to hold web page data
type PageData struct {
	Active           string
	Meta             *Meta
	Data             interface{}
	Version          string
	BuildTime        string
	Year             int
	ExplorerTitle    string
	ExplorerSubtitle string
	TokenSymbol      string
	ExampleAddress   string
	InfoBanner       *template.HTML
	Lang             string
	Debug            bool
	MainMenuItems    []MainMenuItem
	FooterLinks      []NavigationLink
	ApiEnabled       bool
}

type MainMenuItem struct {
	Label    string
	Path     string
	IsActive bool
	Groups   []NavigationGroup
}

type NavigationGroup struct {
	Label string
	Links []NavigationLink
}

type NavigationLink struct {
	Label      string
	Path       string
	Icon       string
	IsExternal bool
}

// Meta is a struct to hold metadata about the page
type Meta struct {
	Title       string
	Description string
	Domain      string
	Path        string
	Templates   string
}

type Empty struct{}
