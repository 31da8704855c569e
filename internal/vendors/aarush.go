package vendors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/purecarat/diamond-backend/internal/logger"
	"github.com/purecarat/diamond-backend/internal/types"
)

const SourceAarush = "Aarush"

type AarushOptions struct {
	BaseURL           string
	Username          string
	Password          string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// AarushAdapter pulls the Aarush inventory feed: basic auth, ?page=N
// pagination, and a next_page_url cursor instead of a total count.
type AarushAdapter struct {
	baseURL  string
	username string
	password string
	client   *http.Client
	limiter  *rate.Limiter
	log      *logger.Logger
}

func NewAarushAdapter(opts AarushOptions, baseLog *logger.Logger) *AarushAdapter {
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AarushAdapter{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		username: opts.Username,
		password: opts.Password,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		log:      baseLog.With("adapter", "AarushAdapter"),
	}
}

func (a *AarushAdapter) Source() string { return SourceAarush }

func (a *AarushAdapter) FetchPage(ctx context.Context, page int) (Page, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return Page{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?page="+strconv.Itoa(page), nil)
	if err != nil {
		return Page{}, err
	}
	req.SetBasicAuth(a.username, a.password)

	resp, err := a.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("aarush page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Page{}, fmt.Errorf("aarush page %d: status %d: %s", page, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var envelope struct {
		Data        []RawItem `json:"data"`
		NextPageURL *string   `json:"next_page_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return Page{}, fmt.Errorf("aarush page %d: decode: %w", page, err)
	}

	return Page{
		Items:   envelope.Data,
		HasMore: envelope.NextPageURL != nil && *envelope.NextPageURL != "",
	}, nil
}

var aarushStringFields = []stringField{
	{rawKey: "cut", assign: func(d *types.IngestedDiamond, v string) { d.Cut = v }},
	{rawKey: "shape", assign: func(d *types.IngestedDiamond, v string) { d.Shape = v }},
	{rawKey: "country", fallback: unknownOrigin, assign: func(d *types.IngestedDiamond, v string) { d.Origin = v }},
	{rawKey: "image_url", assign: func(d *types.IngestedDiamond, v string) { d.ImageSource = v }},
	{rawKey: "video_url", assign: func(d *types.IngestedDiamond, v string) { d.VideoSource = v }},
	{rawKey: "polish", assign: func(d *types.IngestedDiamond, v string) { d.Polish = v }},
	{rawKey: "symmetry", assign: func(d *types.IngestedDiamond, v string) { d.Symmetry = v }},
	{rawKey: "bgm", assign: func(d *types.IngestedDiamond, v string) { d.BGM = v }},
	{rawKey: "treatment", assign: func(d *types.IngestedDiamond, v string) { d.Treatment = v }},
}

func (a *AarushAdapter) MapItem(item RawItem, storeID string) *types.IngestedDiamond {
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
	price, ok := firstFloat(item, "total_sales_price", "sell_price")
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

	var dims []string
	for _, k := range []string{"meas_length", "meas_width", "meas_depth"} {
		if v := str(item, k); v != "" {
			dims = append(dims, v)
		}
	}
	var locParts []string
	for _, k := range []string{"city", "state", "country"} {
		if v := str(item, k); v != "" {
			locParts = append(locParts, v)
		}
	}

	d := &types.IngestedDiamond{
		SourceName:      SourceAarush,
		SourceDiamondID: str(item, "stock_num"),
		SourceStockID:   str(item, "stock_num"),
		StoreID:         storeID,
		CertificateNo:   cert,
		Lab:             strings.ToUpper(str(item, "lab")),
		Type:            types.StoneTypeLab,
		Carat:           carat,
		Color:           color,
		Clarity:         clarity,
		Price:           price,
		Vendor:          SourceAarush,
		IsAvailable:     strings.EqualFold(str(item, "availability"), "AV"),
		Description:     firstStr(item, "description", "comments"),
		Measurements:    strings.Join(dims, "x"),
		Fluorescence:    firstStr(item, "fluor_intensity", "fluor_color"),
		TablePct:        floatOr(item, "table_percent"),
		DepthPct:        floatOr(item, "depth_percent"),
		Girdle:          firstStr(item, "girdle_max", "girdle_condition"),
		Culet:           firstStr(item, "culet_size", "culet_condition"),
		Location:        strings.Join(locParts, ", "),
	}
	applyStringFields(d, item, aarushStringFields)
	return d
}
