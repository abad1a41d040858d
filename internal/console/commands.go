// ABOUTME: Command table of the review console
// ABOUTME: Each command maps onto one session transition or view

package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/chat"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/query"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/region"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/timeline"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/version"
)

type okResult struct {
	OK bool   `json:"ok"`
	ID string `json:"id,omitempty"`
}

var success = okResult{OK: true}

func (c *Console) register() {
	c.commands = map[string]handler{}
	c.help = map[string]string{}

	add := func(name, usage string, h handler) {
		c.commands[name] = h
		c.help[name] = usage
	}

	// actor and capture
	add("role", "role client|staff [name]", c.cmdRole)
	add("tool", "tool select|pen|highlighter|comment", c.cmdTool)
	add("stroke", "stroke <color> [width]", c.cmdStroke)
	add("down", "down <x> <y>", c.cmdDown)
	add("move", "move <x> <y>", c.cmdMove)
	add("up", "up", c.cmdUp)

	// composer
	add("text", "text <comment>", c.cmdText)
	add("type", "type Note|Blocker|Question", c.cmdType)
	add("assignee", "assignee <name>|-", c.cmdDraftAssignee)
	add("label", "label <name>", c.cmdLabel)
	add("internal", "internal on|off", c.cmdInternal)
	add("due", "due <YYYY-MM-DD>|-", c.cmdDue)
	add("attach", "attach <name> <mime> <bytes> [url]", c.cmdAttach)
	add("detach", "detach", c.cmdDetach)
	add("submit", "submit", c.cmdSubmit)
	add("cancel", "cancel", c.cmdCancel)
	add("undo", "undo", c.cmdUndo)

	// annotations
	add("status", "status <id>", c.cmdStatus)
	add("assign", "assign <id> <name>|-", c.cmdAssign)
	add("patch", "patch <id> <json merge patch>", c.cmdPatch)
	add("delete", "delete <id>", c.cmdDelete)

	// versions
	add("switch", "switch <index>", c.cmdSwitch)
	add("restore", "restore <index>", c.cmdRestore)
	add("publish", "publish image|video <locator> [label]", c.cmdPublish)
	add("compare", "compare <index>|off", c.cmdCompare)

	// playback and selection
	add("seek", "seek <seconds>", c.cmdSeek)
	add("duration", "duration <seconds>", c.cmdDuration)
	add("play", "play [on|off]", c.cmdPlay)
	add("select", "select <id>|-", c.cmdSelect)
	add("hover", "hover <id>|-", c.cmdHover)
	add("filter", "filter reset|status|search|type|assignee|label|internal|where|limit|offset ...", c.cmdFilter)

	// views
	add("view", "view", c.cmdView)
	add("list", "list", c.cmdList)
	add("markers", "markers", c.cmdMarkers)
	add("versions", "versions", c.cmdVersions)
	add("chat", "chat [message]", c.cmdChat)
	add("thumbs", "thumbs [fraction]", c.cmdThumbs)
	add("preview", "preview <index>", c.cmdPreview)

	add("help", "help", c.cmdHelp)
	add("quit", "quit", func(context.Context, []string, string) (any, error) { return nil, ErrQuit })
}

func (c *Console) cmdHelp(context.Context, []string, string) (any, error) {
	out := make([]string, 0, len(c.help))
	for _, name := range c.Commands() {
		out = append(out, c.help[name])
	}
	return out, nil
}

func (c *Console) cmdRole(_ context.Context, args []string, _ string) (any, error) {
	if len(args) == 0 {
		return c.s.Actor(), nil
	}
	role, err := annotation.ParseRole(strings.ToLower(args[0]))
	if err != nil {
		return nil, invalid("role", err)
	}
	actor := c.s.Actor()
	actor.Role = role
	if len(args) > 1 {
		actor.Name = strings.Join(args[1:], " ")
	}
	c.s.SetActor(actor)
	return actor, nil
}

func (c *Console) cmdTool(_ context.Context, args []string, _ string) (any, error) {
	if len(args) != 1 {
		return nil, usage(c.help["tool"])
	}
	if err := c.s.SetTool(args[0]); err != nil {
		return nil, err
	}
	return map[string]any{"tool": c.s.Tool(), "captureEnabled": c.s.CaptureEnabled()}, nil
}

func (c *Console) cmdStroke(_ context.Context, args []string, _ string) (any, error) {
	if len(args) == 0 || len(args) > 2 {
		return nil, usage(c.help["stroke"])
	}
	width := 0.0
	if len(args) == 2 {
		w, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return nil, invalid("stroke width", err)
		}
		width = w
	}
	c.s.SetStroke(args[0], width)
	return success, nil
}

func (c *Console) cmdDown(_ context.Context, args []string, _ string) (any, error) {
	at, err := parseCoord(args)
	if err != nil {
		return nil, err
	}
	if err := c.s.PointerDown(at); err != nil {
		return nil, err
	}
	return c.draft(), nil
}

func (c *Console) cmdMove(_ context.Context, args []string, _ string) (any, error) {
	at, err := parseCoord(args)
	if err != nil {
		return nil, err
	}
	c.s.PointerMove(at)
	return nil, nil
}

func (c *Console) cmdUp(context.Context, []string, string) (any, error) {
	c.s.PointerUp()
	return c.draft(), nil
}

func (c *Console) cmdText(_ context.Context, _ []string, rest string) (any, error) {
	c.s.SetCommentText(rest)
	return c.draft(), nil
}

func (c *Console) cmdType(_ context.Context, args []string, _ string) (any, error) {
	if len(args) != 1 {
		return nil, usage(c.help["type"])
	}
	t, err := annotation.ParseCommentType(args[0])
	if err != nil {
		return nil, invalid("type", err)
	}
	c.s.SetDraftType(t)
	return c.draft(), nil
}

func (c *Console) cmdDraftAssignee(_ context.Context, _ []string, rest string) (any, error) {
	c.s.SetDraftAssignee(clearable(rest))
	return c.draft(), nil
}

func (c *Console) cmdLabel(_ context.Context, _ []string, rest string) (any, error) {
	if rest == "" {
		return nil, usage(c.help["label"])
	}
	c.s.ToggleDraftLabel(rest)
	return c.draft(), nil
}

func (c *Console) cmdInternal(_ context.Context, args []string, _ string) (any, error) {
	on, err := parseSwitch(args, !c.s.Draft().Internal)
	if err != nil {
		return nil, err
	}
	c.s.SetDraftInternal(on)
	return c.draft(), nil
}

func (c *Console) cmdDue(_ context.Context, args []string, _ string) (any, error) {
	if len(args) != 1 {
		return nil, usage(c.help["due"])
	}
	if args[0] == "-" {
		c.s.SetDueDate(nil)
		return c.draft(), nil
	}
	due, err := annotation.ParseDueDate(args[0])
	if err != nil {
		return nil, invalid("due date", err)
	}
	c.s.SetDueDate(&due)
	return c.draft(), nil
}

func (c *Console) cmdAttach(_ context.Context, args []string, _ string) (any, error) {
	if len(args) < 3 || len(args) > 4 {
		return nil, usage(c.help["attach"])
	}
	size, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil || size < 0 {
		return nil, invalid("attachment size", fmt.Errorf("bad size %q", args[2]))
	}
	f := annotation.ReferenceFile{Name: args[0], MimeType: args[1], SizeBytes: size}
	if len(args) == 4 {
		f.DataLocator = args[3]
	}
	if err := c.s.AttachReference(f); err != nil {
		return nil, err
	}
	return c.draft(), nil
}

func (c *Console) cmdDetach(context.Context, []string, string) (any, error) {
	c.s.RemoveReference()
	return c.draft(), nil
}

func (c *Console) cmdSubmit(context.Context, []string, string) (any, error) {
	a, err := c.s.Submit()
	if err != nil {
		return nil, err
	}
	if a == nil {
		return okResult{}, nil
	}
	return a, nil
}

func (c *Console) cmdCancel(context.Context, []string, string) (any, error) {
	c.s.Cancel()
	return c.draft(), nil
}

func (c *Console) cmdUndo(context.Context, []string, string) (any, error) {
	if err := c.s.UndoLast(); err != nil {
		return nil, err
	}
	return success, nil
}

func (c *Console) cmdStatus(_ context.Context, args []string, _ string) (any, error) {
	if len(args) != 1 {
		return nil, usage(c.help["status"])
	}
	if err := c.s.ToggleStatus(args[0]); err != nil {
		return nil, err
	}
	return c.annotation(args[0]), nil
}

func (c *Console) cmdAssign(_ context.Context, args []string, rest string) (any, error) {
	if len(args) < 2 {
		return nil, usage(c.help["assign"])
	}
	name := clearable(strings.TrimSpace(strings.TrimPrefix(rest, args[0])))
	if err := c.s.Update(args[0], annotation.Fields{Assignee: &name}); err != nil {
		return nil, err
	}
	return c.annotation(args[0]), nil
}

func (c *Console) cmdPatch(_ context.Context, args []string, rest string) (any, error) {
	if len(args) < 2 {
		return nil, usage(c.help["patch"])
	}
	patch := strings.TrimSpace(strings.TrimPrefix(rest, args[0]))
	if err := c.s.PatchAnnotation(args[0], []byte(patch)); err != nil {
		return nil, err
	}
	return c.annotation(args[0]), nil
}

func (c *Console) cmdDelete(_ context.Context, args []string, _ string) (any, error) {
	if len(args) != 1 {
		return nil, usage(c.help["delete"])
	}
	if err := c.s.Delete(args[0]); err != nil {
		return nil, err
	}
	return okResult{OK: true, ID: args[0]}, nil
}

func (c *Console) cmdSwitch(_ context.Context, args []string, _ string) (any, error) {
	i, err := parseIndex(args)
	if err != nil {
		return nil, err
	}
	if err := c.s.SwitchVersion(i); err != nil {
		return nil, err
	}
	return c.s.Versions(), nil
}

func (c *Console) cmdRestore(_ context.Context, args []string, _ string) (any, error) {
	i, err := parseIndex(args)
	if err != nil {
		return nil, err
	}
	if _, err := c.s.RestoreVersion(i); err != nil {
		return nil, err
	}
	return c.s.Versions(), nil
}

func (c *Console) cmdPublish(_ context.Context, args []string, _ string) (any, error) {
	if len(args) < 2 {
		return nil, usage(c.help["publish"])
	}
	kind := annotation.MediaKind(strings.ToLower(args[0]))
	if kind != annotation.MediaImage && kind != annotation.MediaVideo {
		return nil, invalid("media kind", fmt.Errorf("unknown media kind %q", args[0]))
	}
	nv := version.NewVersion{
		MediaKind:    kind,
		MediaLocator: args[1],
		Label:        strings.Join(args[2:], " "),
	}
	c.s.PublishVersion(nv)
	return c.s.Versions(), nil
}

func (c *Console) cmdCompare(_ context.Context, args []string, _ string) (any, error) {
	if len(args) == 1 && args[0] == "off" {
		if err := c.s.SetComparison(nil); err != nil {
			return nil, err
		}
		return c.s.Versions(), nil
	}
	i, err := parseIndex(args)
	if err != nil {
		return nil, err
	}
	if err := c.s.SetComparison(&i); err != nil {
		return nil, err
	}
	return c.s.Versions(), nil
}

func (c *Console) cmdSeek(_ context.Context, args []string, _ string) (any, error) {
	t, err := parseSeconds(args)
	if err != nil {
		return nil, err
	}
	c.s.Seek(t)
	return c.playback(), nil
}

func (c *Console) cmdDuration(_ context.Context, args []string, _ string) (any, error) {
	d, err := parseSeconds(args)
	if err != nil {
		return nil, err
	}
	c.s.SetDuration(d)
	return c.playback(), nil
}

func (c *Console) cmdPlay(_ context.Context, args []string, _ string) (any, error) {
	_, playing, _ := c.s.Playback()
	on, err := parseSwitch(args, !playing)
	if err != nil {
		return nil, err
	}
	c.s.SetPlaying(on)
	return c.playback(), nil
}

func (c *Console) cmdSelect(_ context.Context, args []string, _ string) (any, error) {
	if len(args) != 1 {
		return nil, usage(c.help["select"])
	}
	c.s.Select(clearable(args[0]))
	return map[string]any{"selected": c.s.Selected(), "playback": c.playback()}, nil
}

func (c *Console) cmdHover(_ context.Context, args []string, _ string) (any, error) {
	if len(args) != 1 {
		return nil, usage(c.help["hover"])
	}
	c.s.Hover(clearable(args[0]))
	return map[string]any{"hovered": c.s.Hovered()}, nil
}

func (c *Console) cmdFilter(_ context.Context, args []string, rest string) (any, error) {
	if len(args) == 0 {
		return c.s.Filter(), nil
	}

	f := c.s.Filter()
	value := strings.TrimSpace(strings.TrimPrefix(rest, args[0]))
	values := args[1:]

	switch strings.ToLower(args[0]) {
	case "reset":
		f = query.NewFilterBuilder(c.s.Actor().Role).Build()
	case "status":
		switch strings.ToLower(value) {
		case "", "all":
			f.Status = ""
		default:
			st, err := annotation.ParseStatus(value)
			if err != nil {
				return nil, invalid("status", err)
			}
			f.Status = st
		}
	case "search":
		f.Search = value
	case "type":
		f.Types = nil
		for _, v := range values {
			t, err := annotation.ParseCommentType(v)
			if err != nil {
				return nil, invalid("type", err)
			}
			f.Types = append(f.Types, t)
		}
	case "assignee":
		f.Assignees = splitList(value)
	case "label":
		f.Labels = splitList(value)
	case "internal":
		on, err := parseSwitch(values, !f.InternalOnly)
		if err != nil {
			return nil, err
		}
		f.InternalOnly = on
	case "where":
		f.Expression = value
	case "limit", "offset":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, invalid(args[0], fmt.Errorf("bad count %q", value))
		}
		if args[0] == "limit" {
			f.Limit = n
		} else {
			f.Offset = n
		}
	default:
		return nil, usage(c.help["filter"])
	}

	if err := c.s.SetFilter(f); err != nil {
		return nil, err
	}
	return c.s.Sidebar()
}

func (c *Console) cmdView(context.Context, []string, string) (any, error) {
	return c.s.Frame()
}

func (c *Console) cmdList(context.Context, []string, string) (any, error) {
	return c.s.Sidebar()
}

func (c *Console) cmdMarkers(context.Context, []string, string) (any, error) {
	return c.s.Markers(), nil
}

func (c *Console) cmdVersions(context.Context, []string, string) (any, error) {
	return c.s.Versions(), nil
}

func (c *Console) cmdChat(_ context.Context, _ []string, rest string) (any, error) {
	if rest == "" {
		return c.s.Chat().List(chat.Query{}), nil
	}
	msg, err := c.s.Chat().Post(c.s.Actor(), rest, time.Now())
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// cmdThumbs generates timeline thumbnails for the active video and waits for
// the result. With a fraction it returns the preview frame under it.
func (c *Console) cmdThumbs(ctx context.Context, args []string, _ string) (any, error) {
	if len(args) == 1 {
		f, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return nil, invalid("fraction", err)
		}
		frame, found := c.s.TimelinePreview(timeline.HoverFraction(f, 1))
		return map[string]any{"frame": frame, "found": found}, nil
	}

	ch, started := c.s.RequestThumbnails(ctx)
	if !started {
		return map[string]any{"started": false}, nil
	}
	r, err := wait(ctx, ch)
	if err != nil {
		return nil, err
	}
	current := c.s.ApplyThumbnails(r)
	out := map[string]any{"started": true, "current": current, "frames": len(r.Frames)}
	if r.Err != nil {
		out["error"] = r.Err.Error()
	}
	return out, nil
}

func (c *Console) cmdPreview(ctx context.Context, args []string, _ string) (any, error) {
	i, err := parseIndex(args)
	if err != nil {
		return nil, err
	}
	v, err := c.s.History().At(i)
	if err != nil {
		return nil, invalid("index", err)
	}
	if ch, started := c.s.RequestVersionPreview(ctx, i); started {
		r, err := wait(ctx, ch)
		if err != nil {
			return nil, err
		}
		c.s.ApplyVersionPreview(r)
	}
	preview, found := c.s.VersionPreview(v.Number)
	return map[string]any{"version": v.Number, "preview": preview, "found": found}, nil
}

func (c *Console) draft() any {
	f, err := c.s.Frame()
	if err != nil {
		return nil
	}
	return f.Draft
}

func (c *Console) annotation(id string) any {
	if a, _, found := c.s.History().FindAnnotation(id); found {
		return a
	}
	return success
}

func (c *Console) playback() map[string]any {
	pos, playing, duration := c.s.Playback()
	return map[string]any{"position": pos, "playing": playing, "duration": duration}
}

func wait(ctx context.Context, ch <-chan timeline.Result) (timeline.Result, error) {
	select {
	case r := <-ch:
		return r, nil
	case <-ctx.Done():
		return timeline.Result{}, ctx.Err()
	}
}

func parseCoord(args []string) (region.Coord, error) {
	if len(args) != 2 {
		return region.Coord{}, invalid("coordinates", fmt.Errorf("want x y, got %d values", len(args)))
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return region.Coord{}, invalid("x", err)
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return region.Coord{}, invalid("y", err)
	}
	return region.Coord{X: x, Y: y}, nil
}

func parseIndex(args []string) (int, error) {
	if len(args) != 1 {
		return 0, invalid("index", fmt.Errorf("want one version index"))
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, invalid("index", err)
	}
	return i, nil
}

func parseSeconds(args []string) (float64, error) {
	if len(args) != 1 {
		return 0, invalid("seconds", fmt.Errorf("want one value"))
	}
	t, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, invalid("seconds", err)
	}
	return t, nil
}

// parseSwitch reads on/off; no argument yields def
func parseSwitch(args []string, def bool) (bool, error) {
	if len(args) == 0 {
		return def, nil
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	default:
		return false, invalid("switch", fmt.Errorf("want on or off, got %q", args[0]))
	}
}

// clearable maps "-" to the empty value
func clearable(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

func splitList(s string) []string {
	if s == "" || s == "-" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func invalid(what string, err error) error {
	return reviewerr.Wrap(reviewerr.InvalidInput, "invalid "+what, err)
}

func usage(u string) error {
	return reviewerr.New(reviewerr.InvalidInput, "usage: "+u)
}
