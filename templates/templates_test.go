package templates

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/brubeckscan/types"
	"github.com/ethpandaops/brubeckscan/types/models"
)

var testLayoutFiles = []string{
	"_layout/layout.html",
	"_layout/header.html",
	"_layout/footer.html",
}

func TestGetTemplateNames(t *testing.T) {
	names := GetTemplateNames()
	assert.Contains(t, names, "_layout/layout.html")
	assert.Contains(t, names, "index/index.html")
	assert.Contains(t, names, "node/node.html")
}

func TestRenderPages(t *testing.T) {
	tests := []struct {
		name     string
		page     string
		data     interface{}
		contains []string
	}{
		{
			name:     "index",
			page:     "index/index.html",
			data:     &models.IndexPageData{ExampleAddress: "0x4a2A3501e50759250828ACd85E7450fb55A10a69", ErrorMessage: "invalid address"},
			contains: []string{`maxlength="42"`, "invalid address", "/node/0x4a2A3501e50759250828ACd85E7450fb55A10a69"},
		},
		{
			name: "node",
			page: "node/node.html",
			data: &models.NodePageData{
				Address:         "0x4a2a3501e50759250828acd85e7450fb55a10a69",
				AddressChecksum: "0x4a2A3501e50759250828ACd85E7450fb55A10a69",
				AddressShort:    "0x4a...",
				StatusOK:        true,
				StatusLabel:     "OK",
				ClaimCount:      1234,
				ClaimPercentage: "93.46",
				PayoutTimezone:  "UTC",
				ClaimTimezone:   "US/Eastern",
				Payouts: []*models.NodePageDataPayout{
					{Timestamp: 1672574400, Time: "Sun, 01 Jan 2023 12:00:00 UTC", Value: "41.2", Rounded: 42},
				},
				ClaimCodes: []*models.NodePageDataClaim{
					{ID: "code-1", ClaimTime: "2023-01-01T12:00:00.000Z", Time: "07:00:00 AM"},
				},
				MetricGroups: []*models.NodePageDataMetrics{
					{Key: "apr_apy", Title: "APR / APY", Entries: []*models.NodePageDataMetricItem{{Label: "Apr", Value: "19.2"}}},
				},
				Timezones: []string{"UTC", "US/Eastern"},
			},
			contains: []string{"0x4a...", "Sun, 01 Jan 2023 12:00:00 UTC", "07:00:00 AM", "93.46%", "1,234", "APR / APY", `<option value="US/Eastern" selected>`},
		},
		{
			name:     "lookup error",
			page:     "node/notfound.html",
			data:     &models.NodeLookupPageData{Address: "0x12", ErrorType: "validation", Message: "invalid ethereum address"},
			contains: []string{"alert-warning", "invalid ethereum address"},
		},
		{
			name:     "not found",
			page:     "_layout/404.html",
			data:     &types.Empty{},
			contains: []string{"404"},
		},
		{
			name:     "error",
			page:     "_layout/500.html",
			data:     &models.ErrorPageData{CallTime: time.Unix(0, 0), CallUrl: "/node/0x", ErrorMsg: "page call 1 timeout", StackTrace: "goroutine 1"},
			contains: []string{"page call 1 timeout", "goroutine 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := append(append([]string{}, testLayoutFiles...), tt.page)
			tmpl := GetTemplate(files...)

			pageData := &types.PageData{
				Meta:          &types.Meta{Title: "BrubeckScan", Path: "/"},
				Data:          tt.data,
				ExplorerTitle: "BrubeckScan",
				Lang:          "en-US",
				MainMenuItems: []types.MainMenuItem{{Label: "Streamr", Groups: []types.NavigationGroup{{Links: []types.NavigationLink{{Label: "Network", Path: "https://streamr.network", IsExternal: true}}}}}},
				FooterLinks:   []types.NavigationLink{{Label: "Earn $DATA", Path: "https://frens.streamr.network/intro", IsExternal: true}},
			}

			buf := &bytes.Buffer{}
			require.NoError(t, tmpl.ExecuteTemplate(buf, "layout", pageData))
			assert.Contains(t, buf.String(), `href="https://frens.streamr.network/intro" target="_blank"`)
			for _, expected := range tt.contains {
				assert.Contains(t, buf.String(), expected)
			}
		})
	}
}
