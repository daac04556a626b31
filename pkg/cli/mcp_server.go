package cli

import (
	"context"
	"fmt"

	"github.com/githubnext/ifcheck/pkg/balance"
	"github.com/githubnext/ifcheck/pkg/constants"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CheckBalanceArgs is the input of the check_balance MCP tool.
// Exactly one of Path and Content must be set.
type CheckBalanceArgs struct {
	Path           string `json:"path,omitempty"`
	Content        string `json:"content,omitempty"`
	Open           string `json:"open,omitempty"`
	Close          string `json:"close,omitempty"`
	StrictBranches bool   `json:"strict_branches,omitempty"`
	LegacyComments bool   `json:"legacy_comments,omitempty"`
}

// NewMCPServer creates an MCP server exposing the balance checker as the
// check_balance tool
func NewMCPServer(base balance.Options) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: constants.CLIName, Version: GetVersion()}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name: "check_balance",
		Description: "Check that every 'if' in a shell script is closed by a matching 'fi'. " +
			"Pass either 'path' (a file readable by the server) or 'content' (the script text). " +
			"Optional: 'open'/'close' to use other block markers, 'strict_branches' to flag else/elif outside a block, " +
			"'legacy_comments' to strip comments before masking quoted strings. " +
			"Returns 'Structure seems valid.' or one 'Line N: message' per error.",
	}, func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[CheckBalanceArgs]) (*mcp.CallToolResultFor[any], error) {
		return checkBalanceTool(base, params.Arguments), nil
	})

	return server
}

// RunMCPServer serves the checker over stdio until the client disconnects or ctx is done
func RunMCPServer(ctx context.Context, base balance.Options) error {
	if err := NewMCPServer(base).Run(ctx, mcp.NewStdioTransport()); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

func checkBalanceTool(base balance.Options, args CheckBalanceArgs) *mcp.CallToolResultFor[any] {
	opts := base
	if args.Open != "" {
		opts.Open = args.Open
	}
	if args.Close != "" {
		opts.Close = args.Close
	}
	if args.StrictBranches {
		opts.StrictBranches = true
	}
	if args.LegacyComments {
		opts.Order = balance.StripFirst
	}
	if err := opts.Validate(); err != nil {
		return toolError(err.Error())
	}

	var report *balance.Report
	switch {
	case args.Path != "" && args.Content != "":
		return toolError("pass either 'path' or 'content', not both")
	case args.Path != "":
		var err error
		report, err = balance.CheckFile(args.Path, opts)
		if err != nil {
			return toolError(err.Error())
		}
	default:
		report = balance.CheckString(args.Content, opts)
	}

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: report.Text()}},
		IsError: !report.Valid(),
	}
}

func toolError(message string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
		IsError: true,
	}
}
