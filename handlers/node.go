package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/brubeckscan/services"
	"github.com/ethpandaops/brubeckscan/templates"
	"github.com/ethpandaops/brubeckscan/types/models"
	"github.com/ethpandaops/brubeckscan/utils"
)

type nodePageResult struct {
	Page        *models.NodePageData       `json:"page"`
	LookupError *models.NodeLookupPageData `json:"error"`
	Status      int                        `json:"status"`
}

// NodeRedirect forwards the lookup form to the canonical node page url
func NodeRedirect(w http.ResponseWriter, r *http.Request) {
	urlArgs := r.URL.Query()
	address := strings.TrimSpace(urlArgs.Get("address"))
	if address == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	target := "/node/" + url.PathEscape(address)
	redirectArgs := url.Values{}
	for _, arg := range []string{"tz", "ptz"} {
		if value := urlArgs.Get(arg); value != "" {
			redirectArgs.Set(arg, value)
		}
	}
	if len(redirectArgs) > 0 {
		target += "?" + redirectArgs.Encode()
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// Node will return the "node" page using a go template
func Node(w http.ResponseWriter, r *http.Request) {
	var nodeTemplateFiles = append(layoutTemplateFiles,
		"node/node.html",
	)
	var lookupErrorTemplateFiles = append(layoutTemplateFiles,
		"node/notfound.html",
	)

	vars := mux.Vars(r)
	address := strings.TrimSpace(vars["address"])
	urlArgs := r.URL.Query()

	var result *nodePageResult
	pageError := services.GlobalCallRateLimiter.CheckCallLimit(r, 1)
	if pageError == nil {
		result, pageError = getNodePageData(address, urlArgs.Get("ptz"), urlArgs.Get("tz"))
	} else if errors.Is(pageError, services.ErrCallRateLimited) {
		result, pageError = &nodePageResult{
			LookupError: &models.NodeLookupPageData{
				Address:   address,
				ErrorType: "ratelimit",
				Message:   "Too many lookups, please wait a moment before trying again.",
			},
			Status: http.StatusTooManyRequests,
		}, nil
	}
	if pageError != nil {
		handlePageError(w, r, pageError)
		return
	}

	w.Header().Set("Content-Type", "text/html")

	if result.LookupError != nil {
		data := InitPageData(w, r, "node", "/node", fmt.Sprintf("Node %v", utils.ShortAddress(address)), lookupErrorTemplateFiles)
		data.Data = result.LookupError
		w.WriteHeader(result.Status)
		if handleTemplateError(w, r, "node.go", "Node", "lookupError", templates.GetTemplate(lookupErrorTemplateFiles...).ExecuteTemplate(w, "layout", data)) != nil {
			return // an error has occurred and was processed
		}
		return
	}

	// the result may be shared with concurrent calls for the same page, so work on a copy
	pageData := *result.Page
	pageData.Timezones = utils.GetTimezoneNames()

	data := InitPageData(w, r, "node", "/node/"+pageData.Address, fmt.Sprintf("Node %v", pageData.AddressShort), nodeTemplateFiles)
	data.Data = &pageData
	if handleTemplateError(w, r, "node.go", "Node", "", templates.GetTemplate(nodeTemplateFiles...).ExecuteTemplate(w, "layout", data)) != nil {
		return // an error has occurred and was processed
	}
}

func getNodePageData(address string, payoutTimezone string, claimTimezone string) (*nodePageResult, error) {
	pageData := &nodePageResult{}
	pageCacheKey := fmt.Sprintf("node:%v:%v:%v", strings.ToLower(address), payoutTimezone, claimTimezone)
	pageRes, pageErr := services.GlobalFrontendCache.ProcessCachedPage(pageCacheKey, true, pageData, func(pageCall *services.FrontendCacheProcessingPage) interface{} {
		pageData, cacheTimeout := buildNodePageData(pageCall, address, payoutTimezone, claimTimezone)
		pageCall.CacheTimeout = cacheTimeout
		return pageData
	})
	if pageErr == nil && pageRes != nil {
		resData, resOk := pageRes.(*nodePageResult)
		if !resOk {
			return nil, ErrInvalidPageModel
		}
		pageData = resData
	}
	return pageData, pageErr
}

func buildNodePageData(pageCall *services.FrontendCacheProcessingPage, address string, payoutTimezone string, claimTimezone string) (*nodePageResult, time.Duration) {
	logger := logrus.WithFields(logrus.Fields{
		"module":  "handlers",
		"address": address,
	})
	logger.Debugf("node page called")

	result := &nodePageResult{}

	// reject bad input before any upstream call
	viewOpts := services.NodeViewOptionsFromConfig(payoutTimezone, claimTimezone)
	if err := services.GlobalNodeService.ValidateLookup(address, viewOpts); err != nil {
		result.LookupError, result.Status = getNodeLookupError(address, err)
		return result, -1
	}

	node, bundle, err := services.GlobalNodeService.Lookup(pageCall.CallCtx, address)
	if err != nil {
		result.LookupError, result.Status = getNodeLookupError(address, err)
		return result, -1
	}

	pageData, err := services.BuildNodeView(node, bundle, viewOpts)
	if err != nil {
		result.LookupError, result.Status = getNodeLookupError(address, err)
		return result, -1
	}

	logger.WithField("metrics", bundle.Count()).Debugf("node page built")

	result.Page = pageData
	result.Status = http.StatusOK

	cacheTimeout := utils.Config.Frontend.PageCacheTimeout
	if cacheTimeout <= 0 {
		return result, -1
	}
	return result, cacheTimeout
}

// getNodeLookupError maps a failed lookup to the user visible message and http status
func getNodeLookupError(address string, err error) (*models.NodeLookupPageData, int) {
	lookupError := &models.NodeLookupPageData{
		Address: address,
	}

	var endpointErr *services.EndpointError
	var status int
	switch {
	case errors.Is(err, utils.ErrInvalidAddress):
		lookupError.ErrorType = "validation"
		lookupError.Message = "Invalid Ethereum address, it should be 42 characters long (including '0x') and hexadecimal."
		status = http.StatusBadRequest
	case errors.Is(err, utils.ErrUnknownTimezone):
		lookupError.ErrorType = "validation"
		lookupError.Message = fmt.Sprintf("Invalid timezone selection: %v", err)
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNodeNotFound):
		lookupError.ErrorType = "notfound"
		lookupError.Message = fmt.Sprintf("Could not fetch data for node %v: node not found.", address)
		status = http.StatusNotFound
	case errors.As(err, &endpointErr):
		lookupError.ErrorType = "transport"
		lookupError.Message = fmt.Sprintf("Could not fetch data for node %v: the node api is currently unavailable.", address)
		status = http.StatusBadGateway
	default:
		lookupError.ErrorType = "transport"
		lookupError.Message = fmt.Sprintf("Could not fetch data for node %v: %v", address, err)
		status = http.StatusBadGateway
	}

	return lookupError, status
}
