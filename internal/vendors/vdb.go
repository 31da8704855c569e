package vendors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/purecarat/diamond-backend/internal/logger"
	"github.com/purecarat/diamond-backend/internal/types"
)

const SourceVDB = "VDB"

// vdbShapes is the shape filter sent with every feed request.
var vdbShapes = []string{
	"Round", "Oval", "Princess", "Cushion", "Radiant",
	"Emerald", "Heart", "Marquise", "Pear", "Asscher",
}

type VDBOptions struct {
	BaseURL     string
	APIKey      string
	AccessToken string
	PageSize    int
	// RequestsPerSecond bounds the feed request rate. Zero falls back to
	// a conservative default.
	RequestsPerSecond float64
	Timeout           time.Duration
}

// VDBAdapter pulls the VDB diamond feed: token auth, page_number/page_size
// pagination, and a vendor-reported total_diamonds_found count.
type VDBAdapter struct {
	baseURL     string
	apiKey      string
	accessToken string
	pageSize    int
	client      *http.Client
	limiter     *rate.Limiter
	log         *logger.Logger
}

func NewVDBAdapter(opts VDBOptions, baseLog *logger.Logger) *VDBAdapter {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 150
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &VDBAdapter{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      opts.APIKey,
		accessToken: opts.AccessToken,
		pageSize:    pageSize,
		client:      &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		log:         baseLog.With("adapter", "VDBAdapter"),
	}
}

func (a *VDBAdapter) Source() string { return SourceVDB }

func (a *VDBAdapter) FetchPage(ctx context.Context, page int) (Page, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return Page{}, err
	}

	params := url.Values{}
	params.Set("show_unavailable", "false")
	params.Set("type", "lab_grown_diamond")
	params.Set("color_from", "J")
	params.Set("color_to", "D")
	params.Set("clarity_from", "SI3")
	params.Set("clarity_to", "FL")
	params.Set("page_number", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(a.pageSize))
	for _, shape := range vdbShapes {
		params.Add("shapes[]", shape)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Page{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Token token=%s, api_key=%s", a.accessToken, a.apiKey))

	resp, err := a.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("vdb page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Page{}, fmt.Errorf("vdb page %d: status %d: %s", page, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var envelope struct {
		Response struct {
			Body struct {
				Diamonds           []RawItem `json:"diamonds"`
				TotalDiamondsFound int       `json:"total_diamonds_found"`
			} `json:"body"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return Page{}, fmt.Errorf("vdb page %d: decode: %w", page, err)
	}

	body := envelope.Response.Body
	return Page{
		Items:      body.Diamonds,
		HasMore:    len(body.Diamonds) >= a.pageSize,
		TotalFound: body.TotalDiamondsFound,
	}, nil
}

var vdbStringFields = []stringField{
	{rawKey: "cut", assign: func(d *types.IngestedDiamond, v string) { d.Cut = v }},
	{rawKey: "shape", assign: func(d *types.IngestedDiamond, v string) { d.Shape = v }},
	{rawKey: "lab", assign: func(d *types.IngestedDiamond, v string) { d.Lab = v }},
	{rawKey: "origin", fallback: unknownOrigin, assign: func(d *types.IngestedDiamond, v string) { d.Origin = v }},
	{rawKey: "measurement", assign: func(d *types.IngestedDiamond, v string) { d.Measurements = v }},
	{rawKey: "polish", assign: func(d *types.IngestedDiamond, v string) { d.Polish = v }},
	{rawKey: "symmetry", assign: func(d *types.IngestedDiamond, v string) { d.Symmetry = v }},
	{rawKey: "fluorescence_intensity_short", assign: func(d *types.IngestedDiamond, v string) { d.Fluorescence = v }},
	{rawKey: "girdle", assign: func(d *types.IngestedDiamond, v string) { d.Girdle = v }},
	{rawKey: "bgm", assign: func(d *types.IngestedDiamond, v string) { d.BGM = v }},
	{rawKey: "treatment", assign: func(d *types.IngestedDiamond, v string) { d.Treatment = v }},
	{rawKey: "culet", assign: func(d *types.IngestedDiamond, v string) { d.Culet = v }},
	{rawKey: "item_location", assign: func(d *types.IngestedDiamond, v string) { d.Location = v }},
}

func (a *VDBAdapter) MapItem(item RawItem, storeID string) *types.IngestedDiamond {
	if item == nil {
		return nil
	}
	cert := str(item, "cert_num")
	if cert == "" {
		return nil
	}
	carat, ok := parseFloat(item, "size")
	if !ok || carat <= 0 {
		return nil
	}
	price, ok := parseFloat(item, "total_sales_price")
	if !ok || price < 0 {
		return nil
	}
	color, ok := NormalizeColor(item["color"])
	if !ok {
		return nil
	}
	clarity, ok := NormalizeClarity(item["clarity"])
	if !ok {
		return nil
	}

	stoneType := types.StoneTypeNatural
	if str(item, "type") == "lab_grown_diamond" {
		stoneType = types.StoneTypeLab
	}

	d := &types.IngestedDiamond{
		SourceName:      SourceVDB,
		SourceDiamondID: str(item, "id"),
		SourceStockID:   str(item, "stock_num"),
		StoreID:         storeID,
		CertificateNo:   cert,
		Type:            stoneType,
		Carat:           carat,
		Color:           color,
		Clarity:         clarity,
		Price:           price,
		Vendor:          strOr(item, "vendor_id", SourceVDB),
		IsAvailable:     true,
		TablePct:        floatOr(item, "table"),
		DepthPct:        floatOr(item, "depth"),
	}
	applyStringFields(d, item, vdbStringFields)
	return d
}
