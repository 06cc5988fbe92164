package drawservice

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// DrawReply is the decoded reply of Draw.
type DrawReply struct {
	ID      string
	Text    string
	Content string
	Index   int
	Weight  int
}

// Slice is one row of a Distribution reply.
type Slice struct {
	Label       string
	Weight      int
	Probability float64
}

// CollectionInfo is one row of a ListCollections reply.
type CollectionInfo struct {
	Name   string
	Hidden bool
	Size   int
}

// Client calls DrawService with typed arguments.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", method, err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Draw draws one entry from collection.
func (c *Client) Draw(ctx context.Context, collection string, opts ...grpc.CallOption) (DrawReply, error) {
	out, err := c.invoke(ctx, MethodDraw, map[string]any{"collection": collection}, opts...)
	if err != nil {
		return DrawReply{}, err
	}
	f := out.GetFields()
	return DrawReply{
		ID:      f["id"].GetStringValue(),
		Text:    f["text"].GetStringValue(),
		Content: f["content"].GetStringValue(),
		Index:   int(f["index"].GetNumberValue()),
		Weight:  int(f["weight"].GetNumberValue()),
	}, nil
}

// Resolve expands the references in text.
func (c *Client) Resolve(ctx context.Context, text string, opts ...grpc.CallOption) (string, error) {
	out, err := c.invoke(ctx, MethodResolve, map[string]any{"text": text}, opts...)
	if err != nil {
		return "", err
	}
	return out.GetFields()["text"].GetStringValue(), nil
}

// Distribution returns the weight breakdown of collection.
func (c *Client) Distribution(ctx context.Context, collection string, opts ...grpc.CallOption) ([]Slice, error) {
	out, err := c.invoke(ctx, MethodDistribution, map[string]any{"collection": collection}, opts...)
	if err != nil {
		return nil, err
	}
	var slices []Slice
	for _, v := range out.GetFields()["slices"].GetListValue().GetValues() {
		f := v.GetStructValue().GetFields()
		slices = append(slices, Slice{
			Label:       f["label"].GetStringValue(),
			Weight:      int(f["weight"].GetNumberValue()),
			Probability: f["probability"].GetNumberValue(),
		})
	}
	return slices, nil
}

// ListCollections lists collections, including hidden ones when asked.
func (c *Client) ListCollections(ctx context.Context, includeHidden bool, opts ...grpc.CallOption) ([]CollectionInfo, error) {
	out, err := c.invoke(ctx, MethodListCollections, map[string]any{"include_hidden": includeHidden}, opts...)
	if err != nil {
		return nil, err
	}
	var infos []CollectionInfo
	for _, v := range out.GetFields()["collections"].GetListValue().GetValues() {
		f := v.GetStructValue().GetFields()
		infos = append(infos, CollectionInfo{
			Name:   f["name"].GetStringValue(),
			Hidden: f["hidden"].GetBoolValue(),
			Size:   int(f["size"].GetNumberValue()),
		})
	}
	return infos, nil
}
