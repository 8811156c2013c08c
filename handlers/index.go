package handlers

import (
	"net/http"

	"github.com/ethpandaops/brubeckscan/templates"
	"github.com/ethpandaops/brubeckscan/types/models"
	"github.com/ethpandaops/brubeckscan/utils"
)

// Index will return the main "index" page with the node lookup form
func Index(w http.ResponseWriter, r *http.Request) {
	var indexTemplateFiles = append(layoutTemplateFiles,
		"index/index.html",
	)
	var indexTemplate = templates.GetTemplate(indexTemplateFiles...)

	data := InitPageData(w, r, "index", "/", "", indexTemplateFiles)
	data.Data = &models.IndexPageData{
		ExampleAddress: utils.Config.Frontend.ExampleAddress,
	}

	w.Header().Set("Content-Type", "text/html")
	if handleTemplateError(w, r, "index.go", "Index", "", indexTemplate.ExecuteTemplate(w, "layout", data)) != nil {
		return // an error has occurred and was processed
	}
}
