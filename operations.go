package optidash

// Parameter structs for the processing operations the service
// understands. Each struct is stored verbatim under its operation name
// and serialized into the request; zero-valued optional fields are
// omitted. Values are checked against the declared tags at the
// terminal call, not when the setter runs.

// Optimize controls the automatic compression pass.
type Optimize struct {
	Compression string `json:"compression,omitempty" validate:"omitempty,oneof=low medium high"`
	Progressive bool   `json:"progressive,omitempty"`
}

// Flip mirrors the image along one or both axes.
type Flip struct {
	Horizontal bool `json:"horizontal,omitempty"`
	Vertical   bool `json:"vertical,omitempty"`
}

// Resize scales the image to the given bounding box.
type Resize struct {
	Width  int    `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height int    `json:"height,omitempty" validate:"omitempty,gt=0"`
	Mode   string `json:"mode,omitempty" validate:"omitempty,oneof=auto fit fill exact"`
}

// Scale resizes the image by a factor instead of absolute dimensions.
type Scale struct {
	Factor float64 `json:"factor" validate:"required,gt=0"`
}

// Crop extracts a region of the image.
type Crop struct {
	Width  int    `json:"width" validate:"required,gt=0"`
	Height int    `json:"height" validate:"required,gt=0"`
	X      int    `json:"x,omitempty" validate:"omitempty,gte=0"`
	Y      int    `json:"y,omitempty" validate:"omitempty,gte=0"`
	Mode   string `json:"mode,omitempty" validate:"omitempty,oneof=auto face"`
}

// Watermark overlays a remote image onto the source.
type Watermark struct {
	URL      string  `json:"url" validate:"required,url"`
	Position string  `json:"position,omitempty" validate:"omitempty,oneof=top left right bottom center top-left top-right bottom-left bottom-right"`
	Opacity  float64 `json:"opacity,omitempty" validate:"omitempty,gt=0,lte=1"`
	Scale    float64 `json:"scale,omitempty" validate:"omitempty,gt=0,lte=1"`
}

// Mask clips the image to a shape.
type Mask struct {
	Shape      string `json:"shape" validate:"required,oneof=circle ellipse triangle"`
	Background string `json:"background,omitempty" validate:"omitempty,hexcolor"`
}

// Filter applies a named visual effect.
type Filter struct {
	Name  string  `json:"name" validate:"required,oneof=blur sharpen pixelate grayscale sepia"`
	Value float64 `json:"value,omitempty" validate:"omitempty,gt=0"`
}

// Adjust tweaks color properties. Values are percentage offsets.
type Adjust struct {
	Brightness int `json:"brightness,omitempty" validate:"omitempty,gte=-100,lte=100"`
	Contrast   int `json:"contrast,omitempty" validate:"omitempty,gte=-100,lte=100"`
	Saturation int `json:"saturation,omitempty" validate:"omitempty,gte=-100,lte=100"`
}

// Auto enables server-chosen enhancement.
type Auto struct {
	Enhance bool `json:"enhance,omitempty"`
}

// Border draws a frame around the image.
type Border struct {
	Width int    `json:"width" validate:"required,gt=0"`
	Color string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// Padding adds space around the image.
type Padding struct {
	Size       int    `json:"size" validate:"required,gt=0"`
	Background string `json:"background,omitempty" validate:"omitempty,hexcolor"`
}

// Store instructs the service to push the result to external storage.
// Incompatible with binary sinks: the service delivers to storage
// instead of responding with image bytes.
type Store struct {
	Service string `json:"service" validate:"required,oneof=s3 gcs azure"`
	Bucket  string `json:"bucket" validate:"required"`
	Key     string `json:"key,omitempty"`
	ACL     string `json:"acl,omitempty" validate:"omitempty,oneof=private public-read"`
}

// Output selects the response image encoding.
type Output struct {
	Format  string `json:"format,omitempty" validate:"omitempty,oneof=jpeg png webp avif"`
	Quality int    `json:"quality,omitempty" validate:"omitempty,gte=1,lte=100"`
}

// Webhook asks the service to deliver the result asynchronously.
// Incompatible with binary sinks.
type Webhook struct {
	URL string `json:"url" validate:"required,url"`
}

// CDN controls edge delivery of the processed image.
type CDN struct {
	Provider string `json:"provider" validate:"required,oneof=cloudfront fastly cloudflare"`
	TTL      int    `json:"ttl,omitempty" validate:"omitempty,gt=0"`
}

// Optimize records an optimize operation. The last call wins.
func (r *Request) Optimize(p Optimize) *Request { return r.operation("optimize", p) }

// Flip records a flip operation. The last call wins.
func (r *Request) Flip(p Flip) *Request { return r.operation("flip", p) }

// Resize records a resize operation. The last call wins.
func (r *Request) Resize(p Resize) *Request { return r.operation("resize", p) }

// Scale records a scale operation. The last call wins.
func (r *Request) Scale(p Scale) *Request { return r.operation("scale", p) }

// Crop records a crop operation. The last call wins.
func (r *Request) Crop(p Crop) *Request { return r.operation("crop", p) }

// Watermark records a watermark operation. The last call wins.
func (r *Request) Watermark(p Watermark) *Request { return r.operation("watermark", p) }

// Mask records a mask operation. The last call wins.
func (r *Request) Mask(p Mask) *Request { return r.operation("mask", p) }

// Filter records a filter operation. The last call wins.
func (r *Request) Filter(p Filter) *Request { return r.operation("filter", p) }

// Adjust records an adjust operation. The last call wins.
func (r *Request) Adjust(p Adjust) *Request { return r.operation("adjust", p) }

// Auto records an auto-enhance operation. The last call wins.
func (r *Request) Auto(p Auto) *Request { return r.operation("auto", p) }

// Border records a border operation. The last call wins.
func (r *Request) Border(p Border) *Request { return r.operation("border", p) }

// Padding records a padding operation. The last call wins.
func (r *Request) Padding(p Padding) *Request { return r.operation("padding", p) }

// Store records an external-storage delivery. The last call wins.
func (r *Request) Store(p Store) *Request { return r.operation("store", p) }

// Output records the response encoding. The last call wins.
func (r *Request) Output(p Output) *Request { return r.operation("output", p) }

// Webhook records an async webhook delivery. The last call wins.
func (r *Request) Webhook(p Webhook) *Request { return r.operation("webhook", p) }

// CDN records an edge-delivery configuration. The last call wins.
func (r *Request) CDN(p CDN) *Request { return r.operation("cdn", p) }
