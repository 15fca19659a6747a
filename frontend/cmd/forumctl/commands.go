package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/forumstartup/forum/frontend/internal/comments"
	"github.com/forumstartup/forum/frontend/internal/notify"
	"github.com/forumstartup/forum/frontend/internal/posts"
	"github.com/forumstartup/forum/frontend/internal/profile"
	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/domain"
	"github.com/forumstartup/forum/shared/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const excerptLen = 80

func cmdLogin(c *cli, ctx context.Context, args []string) error {
	fs := c.flags("login")
	u := fs.String("u", c.cfg.Username(), "username")
	p := fs.String("p", c.cfg.Password(), "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a := c.deps.Auth
	a.Form.Set(api.LoginRequest{Username: *u, Password: *p})
	if !a.Login(ctx) {
		return failure(a.Tracker)
	}
	fmt.Fprintln(c.out, "logged in as", c.deps.Session.CurrentUser().Username)
	return nil
}

func cmdLogout(c *cli, ctx context.Context, _ []string) error {
	c.deps.Auth.Logout(ctx)
	fmt.Fprintln(c.out, "logged out")
	return nil
}

func cmdMe(c *cli, ctx context.Context, _ []string) error {
	if err := c.signedIn(ctx); err != nil {
		return err
	}
	c.printJSON(c.deps.Session.CurrentUser())
	return nil
}

func cmdRegister(c *cli, ctx context.Context, args []string) error {
	fs := c.flags("register")
	var req api.RegisterRequest
	fs.StringVar(&req.Username, "u", "", "username")
	fs.StringVar(&req.Password, "p", "", "password")
	fs.StringVar(&req.Email, "email", "", "email")
	fs.StringVar(&req.FirstName, "first", "", "first name")
	fs.StringVar(&req.LastName, "last", "", "last name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r := c.deps.Register
	r.Form.Set(req)
	if !r.Register(ctx) {
		return failure(r.Tracker)
	}
	fmt.Fprintln(c.out, "registered", req.Username, "- now run forumctl login")
	return nil
}

type postRow struct {
	Id      domain.PostId   `json:"id"`
	Title   string          `json:"title"`
	Author  domain.Username `json:"author"`
	Likes   int             `json:"likes"`
	Liked   bool            `json:"liked,omitempty"`
	Tags    []string        `json:"tags,omitempty"`
	Excerpt string          `json:"excerpt"`
}

func (c *cli) printPosts(list []domain.Post) {
	rows := make([]postRow, 0, len(list))
	for _, p := range list {
		rows = append(rows, postRow{
			Id:      p.Id,
			Title:   p.Title,
			Author:  p.CreatorUsername,
			Likes:   p.LikesCount,
			Liked:   p.LikedByCurrentUser,
			Tags:    p.Tags,
			Excerpt: c.deps.Markdown.Excerpt(p.Content, excerptLen),
		})
	}
	c.printJSON(rows)
}

func cmdPosts(c *cli, ctx context.Context, args []string) error {
	fs := c.flags("posts")
	page := fs.Int("page", 0, "page number, from 0")
	size := fs.Int("size", c.cfg.Public.PageSize, "page size")
	sort := fs.String("sort", "", "sort, e.g. createdAt,desc")
	q := fs.String("q", "", "search text")
	author := fs.Int64("author", 0, "only posts by this user id")
	tag := fs.String("tag", "", "only posts with this tag")
	mine := fs.Bool("mine", false, "only my posts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.signedIn(ctx); err != nil {
		return err
	}

	f := c.deps.Feed
	var ok bool
	switch {
	case *mine:
		ok = f.FetchCurrentUserPosts(ctx)
	case *author != 0:
		ok = f.FetchByUser(ctx, *author)
	case *tag != "":
		ok = f.FetchByTag(ctx, *tag)
	default:
		params := api.ListParams{Page: page, Size: size}
		if *sort != "" {
			params.Sort = sort
		}
		if *q != "" {
			params.SearchQuery = q
		}
		ok = f.Filter(ctx, params)
	}
	if !ok {
		return failure(f.Tracker)
	}
	c.printPosts(f.Posts.Get())
	return nil
}

func cmdRecent(c *cli, ctx context.Context, args []string) error {
	fs := c.flags("recent")
	limit := fs.Int("limit", c.cfg.Public.RecentLimit, "how many posts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f := posts.NewFeed(c.deps.API, c.deps.Session, c.deps.PostLikes, *limit, c.cfg.Public.PageSize)
	if !f.FetchRecent(ctx) {
		return failure(f.Tracker)
	}
	if f.FetchTotalCount(ctx) {
		fmt.Fprintf(c.err, "%d posts in total\n", f.Count.Get())
	}
	c.printPosts(f.Posts.Get())
	return nil
}

func idFlag(c *cli, name, flagName string, args []string) (int64, error) {
	fs := c.flags(name)
	id := fs.Int64(flagName, 0, "id")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	if *id <= 0 {
		return 0, errUsage
	}
	return *id, nil
}

func cmdPost(c *cli, ctx context.Context, args []string) error {
	id, err := idFlag(c, "post", "id", args)
	if err != nil {
		return err
	}
	if err := c.signedIn(ctx); err != nil {
		return err
	}

	v := c.deps.PostView()
	if err := v.Load(ctx, id); err != nil {
		return err
	}
	c.printJSON(struct {
		Post     *domain.Post     `json:"post"`
		HTML     string           `json:"html"`
		Comments []domain.Comment `json:"comments"`
	}{v.Post.Data.Get(), v.Content(), v.Thread.Comments.Get()})
	return nil
}

func cmdCreatePost(c *cli, ctx context.Context, args []string) error {
	fs := c.flags("create-post")
	var req api.PostRequest
	fs.StringVar(&req.Title, "title", "", "title")
	fs.StringVar(&req.Content, "content", "", "content, markdown; - reads stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if req.Content == "-" {
		b, err := readAll("-")
		if err != nil {
			return err
		}
		req.Content = string(b)
	}
	if err := c.signedIn(ctx); err != nil {
		return err
	}

	comp := c.deps.Composer
	comp.Form.Set(req)
	created, ok := comp.Create(ctx)
	if !ok {
		return failure(comp.Tracker)
	}
	fmt.Fprintln(c.out, "created post", created.Id)
	return nil
}

func cmdLike(c *cli, ctx context.Context, args []string) error {
	fs := c.flags("like")
	postId := fs.Int64("post", 0, "post id")
	commentId := fs.Int64("comment", 0, "comment id, of the given post")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *postId <= 0 {
		return errUsage
	}
	if err := c.signedIn(ctx); err != nil {
		return err
	}

	if *commentId > 0 {
		t := c.deps.Thread
		if !t.Fetch(ctx, *postId, api.ListParams{Size: api.Int(1000)}) {
			return failure(t.Tracker)
		}
		if err := t.ToggleLike(ctx, *commentId); err != nil {
			return err
		}
		cm, _ := t.Get(*commentId)
		fmt.Fprintf(c.out, "comment %d: liked=%t likes=%d\n", cm.Id, cm.LikedByCurrentUser, cm.LikesCount)
		return nil
	}

	p := c.deps.Post
	if !p.FetchByID(ctx, *postId) {
		return failure(p.Tracker)
	}
	if err := p.ToggleLike(ctx); err != nil {
		return err
	}
	post := p.Data.Get()
	fmt.Fprintf(c.out, "post %d: liked=%t likes=%d\n", post.Id, post.LikedByCurrentUser, post.LikesCount)
	return nil
}

// cmdTags lists every tag, or adds and removes tags on one post.
func cmdTags(c *cli, ctx context.Context, args []string) error {
	fs := c.flags("tags")
	postId := fs.Int64("post", 0, "post to change")
	add := fs.String("add", "", "comma separated tags to add")
	remove := fs.String("remove", "", "tag to remove")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.signedIn(ctx); err != nil {
		return err
	}

	if *postId <= 0 {
		f := c.deps.Feed
		if !f.FetchTags(ctx) {
			return failure(f.TagsRequest)
		}
		c.printJSON(f.Tags.Get())
		return nil
	}

	p := c.deps.Post
	if !p.FetchByID(ctx, *postId) {
		return failure(p.Tracker)
	}
	if *add != "" && !p.AddTags(ctx, strings.Split(*add, ",")...) {
		return failure(p.Tracker)
	}
	if *remove != "" && !p.RemoveTag(ctx, *remove) {
		return failure(p.Tracker)
	}
	c.printJSON(p.Data.Get().Tags)
	return nil
}

func cmdComments(c *cli, ctx context.Context, args []string) error {
	fs := c.flags("comments")
	postId := fs.Int64("post", 0, "post id")
	page := fs.Int("page", 0, "page number, from 0")
	size := fs.Int("size", c.cfg.Public.PageSize, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *postId <= 0 {
		return errUsage
	}
	if err := c.signedIn(ctx); err != nil {
		return err
	}

	t := c.deps.Thread
	if !t.Fetch(ctx, *postId, api.ListParams{Page: page, Size: size}) {
		return failure(t.Tracker)
	}
	c.printJSON(t.Comments.Get())
	return nil
}

func cmdComment(c *cli, ctx context.Context, args []string) error {
	fs := c.flags("comment")
	postId := fs.Int64("post", 0, "post id")
	text := fs.String("text", "", "comment text")
	replyTo := fs.Int64("reply-to", 0, "id of the comment to answer")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.signedIn(ctx); err != nil {
		return err
	}

	form := comments.Form{PostId: *postId, Content: *text}
	if *replyTo > 0 {
		form.ParentId = replyTo
	}
	e := c.deps.Editor
	e.Form.Set(form)
	created, ok := e.Create(ctx)
	if !ok {
		return failure(e.Tracker)
	}
	fmt.Fprintln(c.out, "created comment", created.Id)
	return nil
}

func cmdUsers(c *cli, ctx context.Context, args []string) error {
	fs := c.flags("users")
	page := fs.Int("page", 0, "page number, from 0")
	size := fs.Int("size", c.cfg.Public.PageSize, "page size")
	username := fs.String("username", "", "username contains")
	email := fs.String("email", "", "email contains")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.signedIn(ctx); err != nil {
		return err
	}

	filter := api.UserFilter{ListParams: api.ListParams{Page: page, Size: size}}
	if *username != "" {
		filter.Username = username
	}
	if *email != "" {
		filter.Email = email
	}
	a := c.deps.Admin
	if !a.Fetch(ctx, filter) {
		return failure(a.Tracker)
	}
	c.printJSON(a.Users.Get())
	return nil
}

func cmdModerate(action string) func(c *cli, ctx context.Context, args []string) error {
	return func(c *cli, ctx context.Context, args []string) error {
		id, err := idFlag(c, action, "id", args)
		if err != nil {
			return err
		}
		if err := c.signedIn(ctx); err != nil {
			return err
		}

		a := c.deps.Admin
		switch action {
		case "block":
			err = a.Block(ctx, id)
		case "unblock":
			err = a.Unblock(ctx, id)
		case "promote":
			err = a.Promote(ctx, id)
		}
		if err != nil {
			return failure(a.Tracker)
		}
		fmt.Fprintf(c.out, "%s: user %d\n", action, id)
		return nil
	}
}

func cmdDeleteUser(c *cli, ctx context.Context, args []string) error {
	id, err := idFlag(c, "delete-user", "id", args)
	if err != nil {
		return err
	}
	if err := c.signedIn(ctx); err != nil {
		return err
	}
	a := c.deps.Admin
	if err := a.Delete(ctx, id); err != nil {
		return failure(a.Tracker)
	}
	fmt.Fprintln(c.out, "deleted user", id)
	return nil
}

// cmdDeletePost removes a post. Administrators may remove any post with -admin.
func cmdDeletePost(c *cli, ctx context.Context, args []string) error {
	fs := c.flags("delete-post")
	id := fs.Int64("id", 0, "post id")
	asAdmin := fs.Bool("admin", false, "use the administrator endpoint")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errUsage
	}
	if err := c.signedIn(ctx); err != nil {
		return err
	}

	p := c.deps.Post
	var ok bool
	if *asAdmin {
		ok = p.AdminDelete(ctx, *id)
	} else {
		ok = p.Delete(ctx, *id)
	}
	if !ok {
		return failure(p.Tracker)
	}
	fmt.Fprintln(c.out, "deleted post", *id)
	return nil
}

// cmdDeleteComment removes a comment through the same path as the comment
// view: the administrator endpoint for administrators.
func cmdDeleteComment(c *cli, ctx context.Context, args []string) error {
	fs := c.flags("delete-comment")
	postId := fs.Int64("post", 0, "post id")
	id := fs.Int64("id", 0, "comment id")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *postId <= 0 || *id <= 0 {
		return errUsage
	}
	if err := c.signedIn(ctx); err != nil {
		return err
	}

	t := c.deps.Thread
	if !t.Fetch(ctx, *postId, api.ListParams{Size: api.Int(1000)}) {
		return failure(t.Tracker)
	}
	cm, held := t.Get(*id)
	if !held {
		return fmt.Errorf("comment %d not found on post %d", *id, *postId)
	}
	item := c.deps.CommentItem(cm)
	if !item.CanDelete() {
		return fmt.Errorf("comment %d cannot be deleted by you", *id)
	}
	confirm := confirmFromStdin(c)
	if *yes {
		confirm = notify.Always
	}
	if !item.HandleDelete(ctx, confirm) {
		if item.Error.Get() == "" {
			return nil
		}
		return failure(item.Tracker)
	}
	fmt.Fprintln(c.out, "deleted comment", *id)
	return nil
}

func cmdDeleteAccount(c *cli, ctx context.Context, args []string) error {
	fs := c.flags("delete-account")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.signedIn(ctx); err != nil {
		return err
	}

	confirm := confirmFromStdin(c)
	if *yes {
		confirm = notify.Always
	}
	p := c.deps.Profile
	if !p.DeleteAccount(ctx, confirm) {
		if p.Error.Get() == "" {
			return nil
		}
		return failure(p.Tracker)
	}
	fmt.Fprintln(c.out, "account deleted")
	return nil
}

func cmdProfile(c *cli, ctx context.Context, _ []string) error {
	if err := c.signedIn(ctx); err != nil {
		return err
	}
	p := c.deps.Profile
	if !p.Load(ctx) {
		return failure(p.Tracker)
	}
	c.printJSON(struct {
		domain.Profile
		Avatar string `json:"avatar"`
	}{p.Data.Get(), p.AvatarPreview.Get()})
	return nil
}

func cmdUpdateProfile(c *cli, ctx context.Context, args []string) error {
	fs := c.flags("update-profile")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "new password")
	avatar := fs.String("avatar", "", "image file for the profile photo")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.signedIn(ctx); err != nil {
		return err
	}

	p := c.deps.Profile
	if !p.Load(ctx) {
		return failure(p.Tracker)
	}
	updates := profile.Updates{Password: *password}
	set := func(dst **string, v string) {
		if v != "" {
			*dst = &v
		}
	}
	set(&updates.FirstName, *first)
	set(&updates.LastName, *last)
	set(&updates.Email, *email)
	if err := p.Update(ctx, updates); err != nil {
		return failure(p.Tracker)
	}
	if *avatar != "" {
		data, err := readAll(*avatar)
		if err != nil {
			return err
		}
		if err := p.ChangeAvatar(ctx, data); err != nil {
			return failure(p.Tracker)
		}
	}
	return nil
}

// cmdWatch keeps a session open, refreshing it in the background, polls
// the newest posts and serves client metrics until interrupted.
func cmdWatch(c *cli, ctx context.Context, args []string) error {
	fs := c.flags("watch")
	interval := fs.Duration("interval", 30*time.Second, "how often to poll for new posts")
	addr := fs.String("metrics-addr", c.cfg.Public.MetricsAddr, "serve /metrics here; empty disables")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *interval <= 0 {
		return errUsage
	}
	log := logger.For("watch")

	status := c.deps.Boot(ctx)
	log.Info("session", "status", status.String())

	if *addr != "" {
		srv := metricsServer(*addr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		log.Info("serving metrics", "addr", *addr)
	}

	f := c.deps.Feed
	seen := map[domain.PostId]bool{}
	poll := func() {
		if !f.FetchRecent(ctx) {
			log.Warn("poll failed", "error", f.Error.Get())
			return
		}
		for _, p := range f.Posts.Get() {
			if !seen[p.Id] {
				seen[p.Id] = true
				fmt.Fprintf(c.out, "%d\t%s\t%s\n", p.Id, p.CreatorUsername, p.Title)
			}
		}
	}

	poll()
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			poll()
		}
	}
}

func metricsServer(addr string) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

// confirmFromStdin asks on stderr and reads y/N from stdin.
func confirmFromStdin(c *cli) notify.Confirm {
	return func(prompt string) bool {
		fmt.Fprint(c.err, prompt+" [y/N] ")
		var answer string
		_, _ = fmt.Fscanln(os.Stdin, &answer)
		return strings.EqualFold(strings.TrimSpace(answer), "y")
	}
}
