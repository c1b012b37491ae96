package client

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/deskhub/internal/model"
)

// State はセッションストアの認証状態を表す。
type State string

const (
	// StateUnauthenticated は未認証状態。
	StateUnauthenticated State = "unauthenticated"
	// StateAuthenticating は認証処理中。認証済みとして扱ってはならない。
	StateAuthenticating State = "authenticating"
	// StateAuthenticated は認証済み状態。
	StateAuthenticated State = "authenticated"
	// StateError は認証失敗状態。Messageに人間可読なメッセージを保持する。
	StateError State = "error"
)

// Event は認証状態の変化を購読者に通知するイベント種別。
type Event string

const (
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
	EventUserUpdated    Event = "USER_UPDATED"
)

// SubscribeFunc は認証イベントを受け取るコールバック。
// identityはSIGNED_OUT時はnil。
type SubscribeFunc func(event Event, identity *Identity)

// Subscription は購読の所有権を表す。Close()で購読を解除する。
// Closeは何度呼んでも安全で、解除は一度だけ行われる。
type Subscription struct {
	store *Store
	id    int
	once  sync.Once
}

// Close は購読を解除する。
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.store.mu.Lock()
		delete(s.store.subscribers, s.id)
		s.store.mu.Unlock()
	})
}

// Store はセッションの状態機械を管理する。
// 状態は {Unauthenticated, Authenticating, Authenticated, Error} の4つ。
type Store struct {
	client *Client

	mu          sync.Mutex
	state       State
	identity    *Identity
	lastMessage string
	subscribers map[int]SubscribeFunc
	nextSubID   int

	refreshInterval time.Duration
	done            chan struct{}
	closeOnce       sync.Once
	wg              sync.WaitGroup
}

// NewStore はStoreを生成し、バックグラウンドのセッション再検証を開始する。
// 初期状態はAuthenticating。既存セッションの確認はRestoreで行う。
func NewStore(client *Client, refreshInterval time.Duration) *Store {
	s := &Store{
		client:          client,
		state:           StateAuthenticating,
		subscribers:     make(map[int]SubscribeFunc),
		refreshInterval: refreshInterval,
		done:            make(chan struct{}),
	}

	if refreshInterval > 0 {
		s.wg.Add(1)
		go s.refreshLoop()
	}

	return s
}

// State は現在の認証状態を返す。
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity は現在のログインユーザーを返す。未認証時はnil。
func (s *Store) Identity() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Message は直近のエラー状態の人間可読メッセージを返す。
func (s *Store) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMessage
}

// Subscribe は認証イベントの購読を登録する。
// 返されるSubscriptionの所有権は呼び出し側にあり、不要になったらCloseすること。
func (s *Store) Subscribe(fn SubscribeFunc) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers[id] = fn
	return &Subscription{store: s, id: id}
}

// Restore は既存セッションの有無を確認して初期状態を解決する。
// セッションが有効ならAuthenticated、無ければUnauthenticatedに遷移する。
func (s *Store) Restore(ctx context.Context) error {
	identity, err := s.client.Me(ctx)
	if err != nil {
		s.setState(StateUnauthenticated, nil, "")
		if model.IsRetryable(err) {
			return err
		}
		return nil
	}

	s.setState(StateAuthenticated, identity, "")
	s.emit(EventSignedIn, identity)
	return nil
}

// SignIn はメールアドレスとパスワードでサインインする。
// 失敗時はError状態に遷移し、認証情報不正の場合は "invalid login credentials" を記録する。
// リトライは行わない。
func (s *Store) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	s.setState(StateAuthenticating, nil, "")

	identity, err := s.client.SignIn(ctx, email, password)
	if err != nil {
		s.setState(StateError, nil, signInFailureMessage(err))
		return nil, err
	}

	s.setState(StateAuthenticated, identity, "")
	s.emit(EventSignedIn, identity)
	return identity, nil
}

// SignUp は新規登録する。登録されてもセッションは確立されず、状態は変化しない。
// 返る識別情報はメール未確認の場合がある。
func (s *Store) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	return s.client.SignUp(ctx, email, password)
}

// SignInWithGoogle はGoogle OAuthフローのリダイレクト先URLを返し、
// Authenticating状態に遷移する。コールバック完了まで制御はアプリの外にある。
func (s *Store) SignInWithGoogle() string {
	s.setState(StateAuthenticating, nil, "")
	return s.client.GoogleLoginURL()
}

// CompleteOAuth はOAuthリダイレクトのフラグメントからトークンペアを取り出し、
// サーバーに再送してセッションを確立する。
// フラグメントはサーバーに届かないため、この再送がトークンペア形状の完了手順になる。
func (s *Store) CompleteOAuth(ctx context.Context, fragment string) (*Identity, error) {
	pair, err := ParseTokenFragment(fragment)
	if err != nil {
		s.setState(StateError, nil, "invalid oauth callback fragment")
		return nil, err
	}

	identity, err := s.client.CreateSession(ctx, pair)
	if err != nil {
		s.setState(StateError, nil, signInFailureMessage(err))
		return nil, err
	}

	s.setState(StateAuthenticated, identity, "")
	s.emit(EventSignedIn, identity)
	return identity, nil
}

// SignOut はサインアウトする。サーバー側の破棄に失敗しても
// ローカルの識別情報は必ずクリアする（フェイルオープン）。
func (s *Store) SignOut(ctx context.Context) error {
	err := s.client.Logout(ctx)

	s.setState(StateUnauthenticated, nil, "")
	s.emit(EventSignedOut, nil)

	return err
}

// Close はバックグラウンドの再検証を停止し、全購読を解除する。
// 何度呼んでも安全。
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()

		s.mu.Lock()
		s.subscribers = make(map[int]SubscribeFunc)
		s.mu.Unlock()
	})
}

// refreshLoop は定期的にセッションを再検証し、帯域外の変化をイベントで通知する。
func (s *Store) refreshLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.revalidate()
		}
	}
}

// revalidate は認証済みセッションの有効性を確認する。
// リモートでサインアウトされていればSIGNED_OUTを、
// ユーザー情報が変わっていればUSER_UPDATEDを通知する。
func (s *Store) revalidate() {
	s.mu.Lock()
	state := s.state
	current := s.identity
	s.mu.Unlock()

	if state != StateAuthenticated {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	identity, err := s.client.Me(ctx)
	if err != nil {
		// 一時的な接続障害ではローカル状態を維持する
		if model.IsRetryable(err) {
			return
		}
		s.setState(StateUnauthenticated, nil, "")
		s.emit(EventSignedOut, nil)
		return
	}

	if current == nil || *identity != *current {
		s.setState(StateAuthenticated, identity, "")
		s.emit(EventUserUpdated, identity)
		return
	}

	s.emit(EventTokenRefreshed, identity)
}

func (s *Store) setState(state State, identity *Identity, message string) {
	s.mu.Lock()
	s.state = state
	s.identity = identity
	s.lastMessage = message
	s.mu.Unlock()
}

func (s *Store) emit(event Event, identity *Identity) {
	s.mu.Lock()
	fns := make([]SubscribeFunc, 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(event, identity)
	}
}

// signInFailureMessage はサインイン失敗を人間可読なメッセージに変換する。
func signInFailureMessage(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case model.ErrCodeInvalidCredentials:
			return "invalid login credentials"
		case model.ErrCodeSessionExpired:
			return "session expired, please sign in again"
		case model.ErrCodeNetworkError:
			return "could not reach the server"
		}
		return apiErr.Message
	}
	return err.Error()
}

// ParseTokenFragment はリダイレクトURLのフラグメント
// "#access_token=...&refresh_token=..." からトークンペアを復元する。
func ParseTokenFragment(fragment string) (*model.TokenPair, error) {
	trimmed := strings.TrimPrefix(fragment, "#")
	values, err := url.ParseQuery(trimmed)
	if err != nil {
		return nil, errors.New("malformed token fragment")
	}

	pair := &model.TokenPair{
		AccessToken:  values.Get("access_token"),
		RefreshToken: values.Get("refresh_token"),
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return nil, errors.New("token fragment missing access or refresh token")
	}
	return pair, nil
}
