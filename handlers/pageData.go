package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"syscall"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/ethpandaops/brubeckscan/types"
	"github.com/ethpandaops/brubeckscan/utils"
)

var layoutTemplateFiles = []string{
	"_layout/layout.html",
	"_layout/header.html",
	"_layout/footer.html",
}

func InitPageData(w http.ResponseWriter, r *http.Request, active, path, title string, mainTemplates []string) *types.PageData {
	fullTitle := fmt.Sprintf("%v - %v", utils.Config.Frontend.SiteName, title)

	if title == "" {
		fullTitle = utils.Config.Frontend.SiteName
	}

	siteDomain := utils.Config.Frontend.SiteDomain
	if siteDomain == "" {
		siteDomain = r.Host
	}

	data := &types.PageData{
		Meta: &types.Meta{
			Title:       fullTitle,
			Description: "Reward and staking statistics of Streamr Brubeck nodes",
			Domain:      siteDomain,
			Path:        path,
			Templates:   strings.Join(mainTemplates, ","),
		},
		Active:           active,
		Data:             &types.Empty{},
		Version:          utils.GetBuildVersion(),
		BuildTime:        fmt.Sprintf("%v", utils.GetBuildTime().Unix()),
		Year:             time.Now().UTC().Year(),
		ExplorerTitle:    utils.Config.Frontend.SiteName,
		ExplorerSubtitle: utils.Config.Frontend.SiteSubtitle,
		TokenSymbol:      utils.Config.Frontend.TokenSymbol,
		ExampleAddress:   utils.Config.Frontend.ExampleAddress,
		Lang:             "en-US",
		Debug:            utils.Config.Frontend.Debug,
		MainMenuItems:    createMenuItems(active),
		FooterLinks:      createFooterLinks(utils.Config.Frontend.TokenSymbol),
		ApiEnabled:       utils.Config.Api.Enabled,
	}

	if utils.Config.Frontend.SiteDescription != "" {
		data.Meta.Description = utils.Config.Frontend.SiteDescription
	}

	for _, v := range r.Cookies() {
		if v.Name == "language" {
			data.Lang = v.Value
			break
		}
	}

	return data
}

func createMenuItems(active string) []types.MainMenuItem {
	items := []types.MainMenuItem{
		{
			Label:    "Nodes",
			IsActive: active == "node" || active == "index",
			Groups: []types.NavigationGroup{
				{
					Links: []types.NavigationLink{
						{
							Label: "Node Lookup",
							Path:  "/",
							Icon:  "fa-search",
						},
					},
				},
			},
		},
		{
			Label: "Streamr",
			Groups: []types.NavigationGroup{
				{
					Links: []types.NavigationLink{
						{
							Label:      "Network Explorer",
							Path:       "https://streamr.network/network-explorer",
							Icon:       "fa-globe",
							IsExternal: true,
						},
						{
							Label:      "Documentation",
							Path:       "https://docs.streamr.network",
							Icon:       "fa-book",
							IsExternal: true,
						},
					},
				},
			},
		},
	}

	if utils.Config.Api.Enabled {
		items[0].Groups = append(items[0].Groups, types.NavigationGroup{
			Label: "API",
			Links: []types.NavigationLink{
				{
					Label: "Timezones",
					Path:  "/api/v1/timezones",
					Icon:  "fa-clock",
				},
			},
		})
	}

	return items
}

func createFooterLinks(tokenSymbol string) []types.NavigationLink {
	if tokenSymbol == "" {
		tokenSymbol = "DATA"
	}
	return []types.NavigationLink{
		{Label: "Streamr Network", Path: "https://network.streamr.network/", IsExternal: true},
		{Label: "Streamr Hub", Path: "https://streamr.network/core", IsExternal: true},
		{Label: "Earn $" + tokenSymbol, Path: "https://frens.streamr.network/intro", IsExternal: true},
		{Label: "Streamr Twitter", Path: "https://twitter.com/streamr", IsExternal: true},
	}
}

// used to handle errors constructed by Template.ExecuteTemplate correctly
func handleTemplateError(w http.ResponseWriter, r *http.Request, fileIdentifier string, functionIdentifier string, infoIdentifier string, err error) error {
	// ignore network related errors
	if err != nil && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, syscall.ETIMEDOUT) {
		logger.WithFields(logger.Fields{
			"file":       fileIdentifier,
			"function":   functionIdentifier,
			"info":       infoIdentifier,
			"error type": fmt.Sprintf("%T", err),
			"route":      r.URL.String(),
		}).WithError(err).Error("error executing template")
		http.Error(w, "Internal server error", http.StatusServiceUnavailable)
	}
	return err
}
