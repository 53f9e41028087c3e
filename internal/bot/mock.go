package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"ngmc-chatbot-backend/internal/catalog"
	"ngmc-chatbot-backend/internal/models"
	"ngmc-chatbot-backend/internal/repo"

	"gorm.io/gorm"
)

// maxLinksPerReply caps how many catalog links a single reply embeds.
const maxLinksPerReply = 8

var cannedReplies = []string{
	"Hello! I'm the NGMC information assistant. You can ask me about courses, admissions, exam schedules, fee structure, syllabus or our staff.",
	"NGMC (Nallamuthu Gounder Mahalingam College), Pollachi offers undergraduate and postgraduate programmes across arts, science and commerce. What would you like to know more about?",
	"I can help you with information about NGMC college. Try asking about exam schedules, fee structure, seating arrangements or the syllabus of your course.",
	"Admissions at NGMC open every academic year. For details on eligibility and application, visit https://www.ngmc.org or ask me about the fee structure.",
	"Thanks for reaching out! For anything I can't answer here, the college office at https://www.ngmc.org is the best place to check.",
}

var categoryLabels = map[string]string{
	models.CategoryExamSchedule:        "exam schedule",
	models.CategoryFeeStructure:        "fee structure",
	models.CategorySeatingArrangements: "seating arrangement",
	models.CategorySyllabus:            "syllabus",
}

// Engine is the deterministic mock responder: keyword matching against the
// resource catalog and staff directory, canned replies otherwise, and an
// artificial delay so the UI feels like a model is typing.
type Engine struct {
	resources repo.ResourceRepoInterface
	staff     *catalog.StaffDirectory

	minDelay time.Duration
	maxDelay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Engine)

// WithDelay bounds the artificial reply delay. Zero max disables it.
func WithDelay(min, max time.Duration) Option {
	return func(e *Engine) {
		e.minDelay = min
		e.maxDelay = max
	}
}

// WithSeed fixes the random source, for reproducible selection in tests.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

func NewEngine(resources repo.ResourceRepoInterface, staff *catalog.StaffDirectory, opts ...Option) *Engine {
	e := &Engine{
		resources: resources,
		staff:     staff,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Respond(ctx context.Context, req Request) (Reply, error) {
	if err := e.wait(ctx); err != nil {
		return Reply{}, err
	}

	reply := Reply{}
	if req.First {
		reply.Title = TitleFor(req.Message)
	}

	r, ok := matchRule(req.Message)
	switch {
	case ok && r.category == categoryStaff:
		reply.Text = e.staffReply(req.Message)
	case ok:
		reply.Text = e.linkReply(r.category)
	default:
		reply.Text = e.cannedReply(req.History)
	}

	return reply, nil
}

// wait sleeps a random duration between the configured bounds, honouring
// context cancellation.
func (e *Engine) wait(ctx context.Context) error {
	if e.maxDelay <= 0 {
		return nil
	}

	delay := e.minDelay
	if spread := e.maxDelay - e.minDelay; spread > 0 {
		e.mu.Lock()
		delay += time.Duration(e.rng.Int63n(int64(spread)))
		e.mu.Unlock()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Engine) linkReply(category string) string {
	links, err := e.resources.GetCategory(category)
	label := categoryLabels[category]
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Sprintf("I couldn't look up the %s documents right now. Please try again later or visit https://www.ngmc.org.", label)
	}
	if len(links) == 0 {
		return fmt.Sprintf("I don't have any %s documents at the moment. Please check https://www.ngmc.org for the latest updates.", label)
	}

	names := make([]string, 0, len(links))
	for name := range links {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > maxLinksPerReply {
		names = names[:maxLinksPerReply]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Here are the latest %s documents:\n", label)
	for _, name := range names {
		fmt.Fprintf(&sb, "- %s: %s\n", name, links[name])
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (e *Engine) staffReply(message string) string {
	if e.staff == nil || e.staff.Empty() {
		return "Staff information is not available right now. Please check https://www.ngmc.org for department contacts."
	}

	lowered := strings.ToLower(message)
	wantsHead := strings.Contains(lowered, "hod") ||
		strings.Contains(lowered, "head") ||
		strings.Contains(lowered, "principal")

	for _, department := range e.staff.Departments() {
		if !strings.Contains(lowered, strings.ToLower(department)) {
			continue
		}
		if wantsHead {
			if head, ok := e.staff.HeadOf(department); ok {
				return fmt.Sprintf("%s (%s) heads the %s department.", head.Name, head.Designation, department)
			}
		}
		return e.departmentListing(department)
	}

	departments := e.staff.Departments()
	return fmt.Sprintf("NGMC has the following departments: %s. Ask about one of them for its staff list.",
		strings.Join(departments, ", "))
}

func (e *Engine) departmentListing(department string) string {
	members := e.staff.StaffOf(department)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Staff of the %s department:\n", department)
	for _, member := range members {
		fmt.Fprintf(&sb, "- %s, %s\n", member.Name, member.Designation)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// cannedReply picks a random canned answer, skipping the one the bot gave
// last so consecutive small talk doesn't repeat.
func (e *Engine) cannedReply(history []models.Conversation) string {
	var last string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.RoleAI {
			last = history[i].Message
			break
		}
	}

	e.mu.Lock()
	idx := e.rng.Intn(len(cannedReplies))
	e.mu.Unlock()

	if cannedReplies[idx] == last {
		idx = (idx + 1) % len(cannedReplies)
	}
	return cannedReplies[idx]
}
