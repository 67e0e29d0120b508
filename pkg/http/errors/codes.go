package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeForbidden              = "forbidden"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeAlreadyExists = "already_exists"
	ErrCodeConflict      = "conflict"

	// Account errors
	ErrCodeRegistrationFailed  = "registration_failed"
	ErrCodeLoginFailed         = "login_failed"
	ErrCodeRefreshFailed       = "refresh_failed"
	ErrCodeEmailTaken          = "email_taken"
	ErrCodeProfileUpdateFailed = "profile_update_failed"

	// Question errors
	ErrCodeQuestionNotFound     = "question_not_found"
	ErrCodeQuestionCreateFailed = "question_create_failed"
	ErrCodeQuestionFetchFailed  = "question_fetch_failed"
	ErrCodeNotQuestionOwner     = "not_question_owner"
	ErrCodeModuleLocked         = "module_locked"
	ErrCodeInvalidModule        = "invalid_module"

	// Session errors
	ErrCodeSessionNotFound     = "session_not_found"
	ErrCodeNotEnoughQuestions  = "not_enough_questions"
	ErrCodeNoQuestionsMatched  = "no_questions_matched"
	ErrCodeQuestionUnanswered  = "question_unanswered"
	ErrCodeAnswerLocked        = "answer_locked"
	ErrCodeChoiceOutOfRange    = "choice_out_of_range"
	ErrCodeSessionCompleted    = "session_completed"
	ErrCodeRankedLimitReached  = "ranked_limit_reached"
	ErrCodeRankedLoginRequired = "ranked_login_required"

	// Deck errors
	ErrCodeDeckNotFound    = "deck_not_found"
	ErrCodeDeckFetchFailed = "deck_fetch_failed"

	// Leaderboard errors
	ErrCodeLeaderboardFetchFailed = "leaderboard_fetch_failed"
	ErrCodeUnknownSortKey         = "unknown_sort_key"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"
)
