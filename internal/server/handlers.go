package server

import (
	"encoding/json"
	"fmt"
	"image"
	"log"

	"github.com/ironsheep/image-dense-mcp/internal/dense"
	"github.com/ironsheep/image-dense-mcp/internal/imaging"
	"github.com/ironsheep/image-dense-mcp/internal/sift"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_dense_describe").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		if s.cfg.Debug() {
			log.Printf("tool %s failed: %v", params.Name, err)
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
// A panicking handler is reported as a tool error.
func (s *Server) executeTool(name string, args json.RawMessage) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("tool %s panicked: %v", name, r)
		}
	}()

	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Dense Sampling
	case "image_dense_layout":
		return s.handleDenseLayout(args)
	case "image_dense_describe":
		return s.handleDenseDescribe(args)
	case "image_dense_overlay":
		return s.handleDenseOverlay(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{
		Code:    code,
		Message: message,
	}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Dense Sampling Handlers ===

// samplingArgs are shared by the dense tools. Pointer fields distinguish
// "omitted" (use the configured default) from an explicit zero, which is
// rejected.
type samplingArgs struct {
	Path    string   `json:"path"`
	Scale   *float64 `json:"scale"`
	PeriodX *float64 `json:"period_x"`
	PeriodY *float64 `json:"period_y"`
}

// samplingConfig merges the arguments over the configured defaults.
func (s *Server) samplingConfig(a samplingArgs) dense.Config {
	c := s.cfg.DenseConfig()
	if a.Scale != nil {
		c.Scale = *a.Scale
	}
	if a.PeriodX != nil {
		c.PeriodX = *a.PeriodX
	}
	if a.PeriodY != nil {
		c.PeriodY = *a.PeriodY
	}
	return c
}

// samplerOptions returns the sampler options implied by the configuration.
func (s *Server) samplerOptions() []dense.Option {
	opts := []dense.Option{dense.WithWorkers(s.cfg.Sampling.Workers)}
	if s.cfg.Debug() {
		opts = append(opts, dense.WithLogger(log.Default()))
	}
	return opts
}

// layout computes the grid for a width x height image without descriptors.
func (s *Server) layout(c dense.Config, width, height int) (dense.Grid, error) {
	sampler, err := sift.NewDense[imaging.Plane](s.cfg.SIFT)
	if err != nil {
		return dense.Grid{}, err
	}
	if err := sampler.Configure(c.Scale, c.PeriodX, c.PeriodY); err != nil {
		return dense.Grid{}, err
	}
	return sampler.Layout(width, height)
}

// DenseLayoutResult describes the sampling grid of an image.
type DenseLayoutResult struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
	dense.Grid
	Count int `json:"count"`
}

func (s *Server) handleDenseLayout(args json.RawMessage) (interface{}, error) {
	var a samplingArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	dims, err := imaging.GetDimensions(s.cache, a.Path)
	if err != nil {
		return nil, err
	}

	c := s.samplingConfig(a)
	grid, err := s.layout(c, dims.Width, dims.Height)
	if err != nil {
		return nil, err
	}

	return &DenseLayoutResult{
		Width:  dims.Width,
		Height: dims.Height,
		Scale:  c.Scale,
		Grid:   grid,
		Count:  grid.Count(),
	}, nil
}

type denseDescribeArgs struct {
	samplingArgs
	PixelType          string   `json:"pixel_type"`
	BlurRadius         *float64 `json:"blur_radius"`
	IncludeDescriptors bool     `json:"include_descriptors"`
	MaxSamples         int      `json:"max_samples"`
}

// DenseSample is one grid sample in a describe response.
type DenseSample struct {
	X          int       `json:"x"`
	Y          int       `json:"y"`
	Descriptor []float64 `json:"descriptor,omitempty"`
}

// DenseDescribeResult contains the descriptors computed on an image.
type DenseDescribeResult struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Scale      float64 `json:"scale"`
	PixelType  string  `json:"pixel_type"`
	BlurRadius float64 `json:"blur_radius"`
	dense.Grid
	Count            int           `json:"count"`
	DescriptorLength int           `json:"descriptor_length"`
	Truncated        bool          `json:"truncated"`
	Samples          []DenseSample `json:"samples"`
}

func (s *Server) handleDenseDescribe(args json.RawMessage) (interface{}, error) {
	var a denseDescribeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.MaxSamples < 0 {
		return nil, fmt.Errorf("max_samples must not be negative, got %d", a.MaxSamples)
	}

	pixelName := a.PixelType
	if pixelName == "" {
		pixelName = s.cfg.Sampling.PixelType
	}
	pixelType, err := imaging.ParsePixelType(pixelName)
	if err != nil {
		return nil, err
	}

	blurRadius := s.cfg.Sampling.BlurRadius
	if a.BlurRadius != nil {
		blurRadius = *a.BlurRadius
	}
	if blurRadius < 0 {
		return nil, fmt.Errorf("blur_radius must not be negative, got %v", blurRadius)
	}

	c := s.samplingConfig(a.samplingArgs)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	plane, err := s.cache.LoadPlane(a.Path, pixelType, blurRadius)
	if err != nil {
		return nil, err
	}

	var (
		result    dense.Result
		descLen   int
		sampleErr error
	)
	switch p := plane.(type) {
	case *imaging.GrayU8:
		result, descLen, sampleErr = runDense(p, s.cfg.SIFT, c, s.samplerOptions()...)
	case *imaging.GrayF32:
		result, descLen, sampleErr = runDense(p, s.cfg.SIFT, c, s.samplerOptions()...)
	default:
		return nil, fmt.Errorf("unsupported plane type %T", plane)
	}
	if sampleErr != nil {
		return nil, fmt.Errorf("failed to sample image: %w", sampleErr)
	}

	n := len(result.Locations)
	if a.MaxSamples > 0 && a.MaxSamples < n {
		n = a.MaxSamples
	}
	samples := make([]DenseSample, n)
	for i := 0; i < n; i++ {
		samples[i] = DenseSample{X: result.Locations[i].X, Y: result.Locations[i].Y}
		if a.IncludeDescriptors {
			samples[i].Descriptor = result.Descriptors[i]
		}
	}

	if s.cfg.Debug() {
		log.Printf("dense describe %s: %d samples (%s, blur %v)", a.Path, len(result.Locations), pixelType, blurRadius)
	}

	return &DenseDescribeResult{
		Width:            plane.Width(),
		Height:           plane.Height(),
		Scale:            c.Scale,
		PixelType:        string(pixelType),
		BlurRadius:       blurRadius,
		Grid:             result.Grid,
		Count:            len(result.Locations),
		DescriptorLength: descLen,
		Truncated:        n < len(result.Locations),
		Samples:          samples,
	}, nil
}

// runDense samples img with a SIFT-backed dense sampler.
func runDense[P imaging.Plane](img P, siftCfg sift.Config, c dense.Config, opts ...dense.Option) (dense.Result, int, error) {
	sampler, err := sift.NewDense[P](siftCfg, opts...)
	if err != nil {
		return dense.Result{}, 0, err
	}
	if err := sampler.Configure(c.Scale, c.PeriodX, c.PeriodY); err != nil {
		return dense.Result{}, 0, err
	}
	if err := sampler.Process(img); err != nil {
		return dense.Result{}, 0, err
	}
	return sampler.Result(), sampler.DescriptorLength(), nil
}

type denseOverlayArgs struct {
	samplingArgs
	ShowWindows bool   `json:"show_windows"`
	Color       string `json:"color"`
}

func (s *Server) handleDenseOverlay(args json.RawMessage) (interface{}, error) {
	var a denseOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = "#FF0000"
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	grid, err := s.layout(s.samplingConfig(a.samplingArgs), bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	centers := make([]image.Point, 0, grid.Count())
	for _, p := range grid.Centers() {
		centers = append(centers, image.Pt(p.X, p.Y))
	}
	return imaging.SampleOverlay(img, centers, grid.Radius, a.ShowWindows, a.Color)
}
