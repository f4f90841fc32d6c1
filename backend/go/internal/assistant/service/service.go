// Package service 实现一轮对话的编排：意图识别、上下文召回、调用模型以及回复后的持久化。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"Concierge/backend/go/internal/analytics"
	"Concierge/backend/go/internal/intent"
	"Concierge/backend/go/internal/leads"
	"Concierge/backend/go/internal/llm"
	"Concierge/backend/go/internal/models"
	"Concierge/backend/go/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// ErrModelCall 表示语言模型调用失败，是唯一会让本轮对话失败的错误。
var ErrModelCall = errors.New("language model call failed")

var leadKeywords = []string{"contact", "pricing", "quote", "interested"}

// Retriever 根据问题和意图返回知识上下文，失败时返回空字符串。
type Retriever interface {
	Retrieve(ctx context.Context, query string, in intent.Intent) string
}

// Memory 是编排器使用的会话记忆。读操作失败时降级为空结果。
type Memory interface {
	History(ctx context.Context, sessionID string, limit int) []models.ConversationTurn
	Profile(ctx context.Context, sessionID string) models.Profile
	LearnProfile(ctx context.Context, sessionID, text string) models.Profile
	AddMemory(ctx context.Context, sessionID, userMessage, reply string) error
}

// Options 是编排参数。
type Options struct {
	Persona           Persona
	Temperature       float32
	MaxTokens         int
	HistoryLimit      int
	HistoryWindow     int
	BackgroundTimeout time.Duration
}

// AssistantService 处理聊天请求。
type AssistantService struct {
	llmClient llm.LLM
	retriever Retriever
	memory    Memory
	analytics *analytics.Service
	leads     leads.Recorder
	opts      Options
	logger    *logger.Logger
	now       func() time.Time

	background sync.WaitGroup
}

// NewAssistantService 创建一个新的 AssistantService 实例。recorder 为 nil 时不记录线索。
func NewAssistantService(llmClient llm.LLM, retriever Retriever, memory Memory, stats *analytics.Service, recorder leads.Recorder, opts Options, log *logger.Logger) *AssistantService {
	if recorder == nil {
		recorder = leads.Noop{}
	}
	return &AssistantService{
		llmClient: llmClient,
		retriever: retriever,
		memory:    memory,
		analytics: stats,
		leads:     recorder,
		opts:      opts,
		logger:    log,
		now:       time.Now,
	}
}

// Respond 生成一轮回复。回复返回后，记忆写入和线索记录在后台完成，不受请求取消影响。
func (s *AssistantService) Respond(ctx context.Context, sessionID, message string) (string, error) {
	start := s.now()
	log := s.logger.WithSession(sessionID)
	in := intent.Classify(message)

	s.analytics.TrackInteraction(ctx, sessionID, models.InteractionEvent{
		Type:    models.InteractionUserMessage,
		Content: message,
		Intent:  in.String(),
	})

	var (
		history   []models.ConversationTurn
		profile   models.Profile
		knowledge string
	)
	var g errgroup.Group
	g.Go(func() error {
		history = s.memory.History(ctx, sessionID, s.opts.HistoryLimit)
		return nil
	})
	g.Go(func() error {
		profile = s.memory.Profile(ctx, sessionID)
		return nil
	})
	g.Go(func() error {
		knowledge = s.retriever.Retrieve(ctx, message, in)
		return nil
	})
	_ = g.Wait()

	conversation := RenderContext(profile, history, s.opts.HistoryWindow)
	resp, err := s.llmClient.GenerateContent(ctx, &models.GenerateContentRequest{
		SystemInstruction: BuildSystemInstruction(s.opts.Persona, knowledge, conversation, profile, in),
		Content:           []models.Content{models.NewTextContent(models.SpeakerUser, message)},
		Temperature:       s.opts.Temperature,
		MaxTokens:         s.opts.MaxTokens,
	})
	reply := strings.TrimSpace(resp.Text())
	if err == nil && reply == "" {
		err = errors.New("empty reply")
	}
	if err != nil {
		log.WithError(models.ErrorInfo{Message: err.Error(), Type: "model_error"}).Error("LLM GenerateContent failed")
		s.analytics.TrackInteraction(ctx, sessionID, models.InteractionEvent{
			Type:    models.InteractionError,
			Content: err.Error(),
			Intent:  in.String(),
			Latency: s.now().Sub(start),
		})
		return "", fmt.Errorf("%w: %v", ErrModelCall, err)
	}

	leadTrigger := IsLeadTrigger(message + " " + reply)
	s.analytics.TrackInteraction(ctx, sessionID, models.InteractionEvent{
		Type:        models.InteractionAIResponse,
		Content:     reply,
		Intent:      in.String(),
		LeadTrigger: leadTrigger,
		Latency:     s.now().Sub(start),
	})

	patch := analytics.SessionPatch{}
	if facts := s.memory.LearnProfile(ctx, sessionID, message); len(facts) > 0 {
		profile = profile.Merge(facts)
		patch.Profile = profile
	}
	if leadTrigger {
		patch.Outcome = models.OutcomeLeadCaptured
	}
	if patch.Profile != nil || patch.Outcome != "" {
		s.analytics.TrackSession(sessionID, patch)
	}

	var lead *models.Lead
	if leadTrigger {
		l := leads.New(sessionID, in.String(), message, profile, s.now())
		lead = &l
	}
	s.persist(ctx, sessionID, message, reply, lead)
	return reply, nil
}

// persist 在后台写入本轮记忆和线索。它使用独立于请求的 context 和日志。
func (s *AssistantService) persist(ctx context.Context, sessionID, message, reply string, lead *models.Lead) {
	bgCtx := context.WithoutCancel(ctx)
	log := s.logger.WithSession(sessionID).WithField("task", "persist_turn")

	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if s.opts.BackgroundTimeout > 0 {
			var cancel context.CancelFunc
			bgCtx, cancel = context.WithTimeout(bgCtx, s.opts.BackgroundTimeout)
			defer cancel()
		}

		if err := s.memory.AddMemory(bgCtx, sessionID, message, reply); err != nil {
			log.WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to persist conversation turn")
		}
		if lead != nil {
			if err := s.leads.Record(bgCtx, *lead); err != nil {
				log.WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to record lead")
			}
		}
	}()
}

// Wait 阻塞直到所有后台持久化任务完成。
func (s *AssistantService) Wait() {
	s.background.Wait()
}

// IsLeadTrigger 判断文本是否包含表示商业意向的关键词。
func IsLeadTrigger(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range leadKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
