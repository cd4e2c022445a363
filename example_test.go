package optidash_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/adamwoolhether/optidash"
)

func ExampleNew() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"output":{"url":"https://cdn.example.com/a.webp"}}`)
	}))
	defer ts.Close()

	c, err := optidash.New("your-api-key", optidash.WithEndpoint(ts.URL))
	if err != nil {
		fmt.Println("build error:", err)
		return
	}

	meta, err := c.Fetch("https://example.com/input.jpg").
		Resize(optidash.Resize{Width: 100}).
		Output(optidash.Output{Format: "webp"}).
		ToJSON(context.Background())
	if err != nil {
		fmt.Println("dispatch error:", err)
		return
	}

	output := meta["output"].(map[string]any)
	fmt.Println(output["url"])
	// Output: https://cdn.example.com/a.webp
}

func ExampleRequest_ToBuffer() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Optidash-Meta", `{"success":true}`)
		w.Write([]byte{0x01, 0x02, 0x03})
	}))
	defer ts.Close()

	c, err := optidash.New("your-api-key", optidash.WithEndpoint(ts.URL))
	if err != nil {
		fmt.Println("build error:", err)
		return
	}

	meta, body, err := c.Fetch("https://example.com/input.jpg").
		Auto(optidash.Auto{Enhance: true}).
		ToBuffer(context.Background())
	if err != nil {
		fmt.Println("dispatch error:", err)
		return
	}

	fmt.Println(meta.OK(), len(body))
	// Output: true 3
}
