package services

import (
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "math"
  "strings"
  "time"

  "github.com/google/uuid"

  "github.com/yungbote/mindmentor-backend/internal/logger"
  "github.com/yungbote/mindmentor-backend/internal/repos"
  "github.com/yungbote/mindmentor-backend/internal/types"
)

// ErrMalformedContent marks generated output that failed to parse as the
// expected structure. It is distinct from a terminal generation failure so
// callers can fall back instead of retrying.
var ErrMalformedContent = errors.New("generated content is not in the expected format")

// Quiz grading boosts accuracy slightly before capping; kept separate from
// the SM-2 interval logic on purpose.
const masteryBoost = 1.2

type LessonExample struct {
  Problem  string `json:"problem"`
  Solution string `json:"solution"`
}

type LessonContent struct {
  Explanation    string          `json:"explanation"`
  KeyPoints      []string        `json:"key_points"`
  Formulas       []string        `json:"formulas"`
  Examples       []LessonExample `json:"examples"`
  CommonMistakes []string        `json:"common_mistakes"`
  ExamTips       []string        `json:"jee_tips"`
}

type QuizQuestion struct {
  ID            int       `json:"id"`
  TopicID       uuid.UUID `json:"topic_id"`
  TopicName     string    `json:"topic_name"`
  QuestionText  string    `json:"question"`
  OptionA       string    `json:"option_a"`
  OptionB       string    `json:"option_b"`
  OptionC       string    `json:"option_c"`
  OptionD       string    `json:"option_d"`
  CorrectAnswer string    `json:"correct_answer"`
  Explanation   string    `json:"explanation"`
}

type QuestionResult struct {
  QuestionID    int    `json:"question_id"`
  QuestionText  string `json:"question_text"`
  UserAnswer    string `json:"user_answer"`
  CorrectAnswer string `json:"correct_answer"`
  IsCorrect     bool   `json:"is_correct"`
  Explanation   string `json:"explanation"`
}

type QuizResult struct {
  TotalQuestions  int              `json:"total_questions"`
  CorrectAnswers  int              `json:"correct_answers"`
  ScorePercentage float64          `json:"score_percentage"`
  QuestionResults []QuestionResult `json:"question_results"`
}

type ContentService interface {
  GenerateLesson(ctx context.Context, topicID uuid.UUID, studentLevel string, forceRefresh bool) (*LessonContent, bool, error)
  ExplainConcept(ctx context.Context, topicID uuid.UUID, concept, studentContext string) (string, bool, error)
  GenerateQuiz(ctx context.Context, topicIDs []uuid.UUID, numQuestions int, difficulty string) ([]QuizQuestion, bool, error)
  GradeQuiz(ctx context.Context, userID uuid.UUID, questions []QuizQuestion, answers map[int]string) (*QuizResult, error)
}

type contentService struct {
  log         *logger.Logger
  cache       CacheService
  gemini      GeminiClient
  topicRepo   repos.TopicRepo
  profileRepo repos.StudentProfileRepo
}

func NewContentService(log *logger.Logger, cache CacheService, gemini GeminiClient, topicRepo repos.TopicRepo, profileRepo repos.StudentProfileRepo) ContentService {
  return &contentService{
    log:         log.With("service", "ContentService"),
    cache:       cache,
    gemini:      gemini,
    topicRepo:   topicRepo,
    profileRepo: profileRepo,
  }
}

// GenerateLesson produces a structured lesson for a topic, served from the
// response cache when a live entry exists.
func (s *contentService) GenerateLesson(ctx context.Context, topicID uuid.UUID, studentLevel string, forceRefresh bool) (*LessonContent, bool, error) {
  topic, err := s.topicRepo.GetByID(ctx, nil, topicID)
  if err != nil {
    return nil, false, fmt.Errorf("load topic: %w", err)
  }
  if topic == nil {
    return nil, false, fmt.Errorf("topic %s does not exist", topicID)
  }
  if studentLevel == "" {
    studentLevel = "intermediate"
  }

  template, err := PromptTemplate("lesson_generation")
  if err != nil {
    return nil, false, err
  }
  params := map[string]interface{}{
    "subject":       topic.Subject,
    "topic_name":    topic.TopicName,
    "chapter_name":  topic.ChapterName,
    "difficulty":    topic.DifficultyLevel,
    "student_level": studentLevel,
  }
  model := ModelForTask(TaskLessonGeneration)

  raw, cached, err := s.cache.GetOrGenerate(ctx, CacheRequest{
    PromptTemplate: template,
    Params:         params,
    Model:          model,
    ContentType:    "lesson",
    ForceRefresh:   forceRefresh,
  }, func(ctx context.Context) (string, error) {
    return s.gemini.GenerateContent(ctx, model, RenderPrompt(template, params))
  })
  if err != nil {
    return nil, false, err
  }

  var lesson LessonContent
  if err := json.Unmarshal([]byte(cleanJSONResponse(raw)), &lesson); err != nil {
    s.log.Warn("Lesson content failed to parse", "topic_id", topicID, "error", err)
    return &LessonContent{}, cached, fmt.Errorf("%w: %v", ErrMalformedContent, err)
  }
  return &lesson, cached, nil
}

func (s *contentService) ExplainConcept(ctx context.Context, topicID uuid.UUID, concept, studentContext string) (string, bool, error) {
  topic, err := s.topicRepo.GetByID(ctx, nil, topicID)
  if err != nil {
    return "", false, fmt.Errorf("load topic: %w", err)
  }
  if topic == nil {
    return "", false, fmt.Errorf("topic %s does not exist", topicID)
  }
  if studentContext == "" {
    studentContext = "beginner"
  }

  template, err := PromptTemplate("concept_explanation")
  if err != nil {
    return "", false, err
  }
  params := map[string]interface{}{
    "subject":         topic.Subject,
    "topic_name":      topic.TopicName,
    "concept":         concept,
    "student_context": studentContext,
  }
  model := ModelForTask(TaskConceptExplanation)

  return s.cache.GetOrGenerate(ctx, CacheRequest{
    PromptTemplate: template,
    Params:         params,
    Model:          model,
    ContentType:    "explanation",
  }, func(ctx context.Context) (string, error) {
    return s.gemini.GenerateContent(ctx, model, RenderPrompt(template, params))
  })
}

// GenerateQuiz builds MCQ questions over the given topics. A parse failure
// of the generated payload returns an empty set with ErrMalformedContent,
// never a crash and never a fake terminal generation failure.
func (s *contentService) GenerateQuiz(ctx context.Context, topicIDs []uuid.UUID, numQuestions int, difficulty string) ([]QuizQuestion, bool, error) {
  if numQuestions <= 0 {
    numQuestions = 5
  }
  if difficulty == "" {
    difficulty = types.DifficultyMedium
  }

  topics := make([]*types.Topic, 0, len(topicIDs))
  for _, id := range topicIDs {
    topic, err := s.topicRepo.GetByID(ctx, nil, id)
    if err != nil {
      return nil, false, fmt.Errorf("load topic: %w", err)
    }
    if topic != nil {
      topics = append(topics, topic)
    }
  }
  if len(topics) == 0 {
    return []QuizQuestion{}, false, nil
  }

  names := make([]string, 0, len(topics))
  for _, topic := range topics {
    names = append(names, topic.TopicName)
  }

  template, err := PromptTemplate("question_generation")
  if err != nil {
    return nil, false, err
  }
  params := map[string]interface{}{
    "num_questions": numQuestions,
    "topics":        strings.Join(names, ", "),
    "difficulty":    difficulty,
  }
  model := ModelForTask(TaskQuestionGeneration)

  raw, cached, err := s.cache.GetOrGenerate(ctx, CacheRequest{
    PromptTemplate: template,
    Params:         params,
    Model:          model,
    ContentType:    "question",
  }, func(ctx context.Context) (string, error) {
    return s.gemini.GenerateContent(ctx, model, RenderPrompt(template, params))
  })
  if err != nil {
    return nil, false, err
  }

  parsed, err := parseQuizPayload(raw)
  if err != nil {
    s.log.Warn("Quiz payload failed to parse", "error", err)
    return []QuizQuestion{}, cached, fmt.Errorf("%w: %v", ErrMalformedContent, err)
  }

  if len(parsed) > numQuestions {
    parsed = parsed[:numQuestions]
  }
  questions := make([]QuizQuestion, 0, len(parsed))
  for idx, q := range parsed {
    topic := topics[idx%len(topics)]
    q.ID = idx + 1
    q.TopicID = topic.ID
    q.TopicName = topic.TopicName
    q.CorrectAnswer = strings.ToUpper(strings.TrimSpace(q.CorrectAnswer))
    if q.Explanation == "" {
      q.Explanation = "No explanation provided"
    }
    questions = append(questions, q)
  }
  return questions, cached, nil
}

func parseQuizPayload(raw string) ([]QuizQuestion, error) {
  cleaned := cleanJSONResponse(raw)

  var asList []QuizQuestion
  if err := json.Unmarshal([]byte(cleaned), &asList); err == nil {
    return asList, nil
  }

  // Some generations wrap the array in an object.
  var asObject struct {
    Questions []QuizQuestion `json:"questions"`
  }
  if err := json.Unmarshal([]byte(cleaned), &asObject); err != nil {
    return nil, err
  }
  if asObject.Questions == nil {
    return nil, fmt.Errorf("no questions field in payload")
  }
  return asObject.Questions, nil
}

// cleanJSONResponse strips markdown code fences that models like to wrap
// JSON payloads in.
func cleanJSONResponse(raw string) string {
  cleaned := strings.TrimSpace(raw)
  if strings.HasPrefix(cleaned, "```") {
    cleaned = strings.TrimPrefix(cleaned, "```json")
    cleaned = strings.TrimPrefix(cleaned, "```")
    cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
  }
  return strings.TrimSpace(cleaned)
}

// GradeQuiz scores the answers and folds the outcome into the learner's
// per-topic profiles. Mastery here is the quiz heuristic, not SM-2: the two
// interact only through the profile row they share.
func (s *contentService) GradeQuiz(ctx context.Context, userID uuid.UUID, questions []QuizQuestion, answers map[int]string) (*QuizResult, error) {
  result := &QuizResult{TotalQuestions: len(questions)}
  seenTopics := make(map[uuid.UUID]bool)

  for _, question := range questions {
    userAnswer := strings.ToUpper(strings.TrimSpace(answers[question.ID]))
    isCorrect := userAnswer != "" && userAnswer == question.CorrectAnswer
    if isCorrect {
      result.CorrectAnswers++
    }
    result.QuestionResults = append(result.QuestionResults, QuestionResult{
      QuestionID:    question.ID,
      QuestionText:  question.QuestionText,
      UserAnswer:    userAnswer,
      CorrectAnswer: question.CorrectAnswer,
      IsCorrect:     isCorrect,
      Explanation:   question.Explanation,
    })
    seenTopics[question.TopicID] = true
  }

  if result.TotalQuestions > 0 {
    pct := float64(result.CorrectAnswers) / float64(result.TotalQuestions) * 100
    result.ScorePercentage = math.Round(pct*10) / 10
  }

  now := time.Now().UTC()
  for topicID := range seenTopics {
    if topicID == uuid.Nil {
      continue
    }
    profile, err := s.profileRepo.GetByUserAndTopic(ctx, nil, userID, topicID)
    if err != nil {
      return nil, fmt.Errorf("load profile: %w", err)
    }
    if profile == nil {
      // A fresh profile is immediately revision-due so the topic stays in
      // the scheduling pool once the quiz lifts it past the practice band.
      due := dateOnly(now)
      profile = &types.StudentProfile{
        UserID:         userID,
        TopicID:        topicID,
        EaseFactor:     DefaultEaseFactor,
        NextReviewDate: &due,
      }
    }

    profile.TotalAttempts += result.TotalQuestions
    profile.CorrectAttempts += result.CorrectAnswers
    if profile.TotalAttempts > 0 {
      profile.Accuracy = float64(profile.CorrectAttempts) / float64(profile.TotalAttempts)
    }
    profile.MasteryScore = math.Min(profile.Accuracy*masteryBoost, 1.0)
    profile.StrengthLevel = types.StrengthLabelFor(profile.MasteryScore)
    profile.LastAttemptDate = &now

    if err := s.profileRepo.Upsert(ctx, nil, profile); err != nil {
      return nil, fmt.Errorf("update profile: %w", err)
    }
  }

  return result, nil
}
