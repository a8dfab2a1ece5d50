package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/battleship/internal/config"
	apperrors "github.com/wfunc/battleship/internal/errors"
	"github.com/wfunc/battleship/internal/game"
	"github.com/wfunc/battleship/internal/repository"
	"github.com/wfunc/battleship/internal/websocket"
	"gorm.io/gorm"
)

// APITestSuite HTTP接口测试套件
type APITestSuite struct {
	suite.Suite
	db     *gorm.DB
	hub    *websocket.Hub
	cancel context.CancelFunc
	router *Router
}

func (s *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.db = repository.SetupTestDB(s.T())
	records := repository.NewMatchRecordRepository(s.db)

	s.hub = websocket.NewHub(config.WebSocketConfig{
		SendBufferSize: 16,
		PingInterval:   time.Second,
		PongTimeout:    2 * time.Second,
		WriteTimeout:   time.Second,
	}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.hub.Run(ctx)

	service := game.NewService(&game.ServiceConfig{
		Notifier: s.hub,
		Archiver: game.NewRecordArchiver(records),
	})
	s.router = NewRouter(&RouterConfig{
		Service: service,
		Records: records,
		Hub:     s.hub,
	})
}

func (s *APITestSuite) TearDownTest() {
	s.cancel()
	repository.CleanupTestDB(s.db)
}

func (s *APITestSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.Engine().ServeHTTP(w, req)
	return w
}

func (s *APITestSuite) decode(w *httptest.ResponseRecorder, v interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *APITestSuite) errorCode(w *httptest.ResponseRecorder) apperrors.ErrorCode {
	var resp ErrorResponse
	s.decode(w, &resp)
	return resp.Code
}

func (s *APITestSuite) createGame(config map[string]interface{}) string {
	var body interface{}
	if config != nil {
		body = map[string]interface{}{"config": config}
	}
	w := s.do(http.MethodPost, "/api/v1/games", body)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var g game.Game
	s.decode(w, &g)
	return g.ID
}

func (s *APITestSuite) join(gameID, name string) string {
	w := s.do(http.MethodPost, "/api/v1/games/"+gameID+"/join", map[string]string{"player_name": name})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var p game.Player
	s.decode(w, &p)
	return p.ID
}

func (s *APITestSuite) placeAndReady(gameID, playerID string, ships []map[string]interface{}) {
	w := s.do(http.MethodPost, "/api/v1/games/"+gameID+"/players/"+playerID+"/ships",
		map[string]interface{}{"ships": ships})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/games/"+gameID+"/players/"+playerID+"/ready", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
}

func ship(name string, xy ...int) map[string]interface{} {
	positions := make([]map[string]int, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		positions = append(positions, map[string]int{"x": xy[i], "y": xy[i+1]})
	}
	return map[string]interface{}{"ship_name": name, "positions": positions}
}

func at(x, y int) map[string]int {
	return map[string]int{"x": x, "y": y}
}

// startDuel 创建并开始一局双人对局
func (s *APITestSuite) startDuel() (string, string, string) {
	id := s.createGame(map[string]interface{}{"board_size": 5})
	a := s.join(id, "alice")
	b := s.join(id, "bob")
	s.placeAndReady(id, a, []map[string]interface{}{ship("Destroyer", 4, 4, 4, 3)})
	s.placeAndReady(id, b, []map[string]interface{}{ship("Destroyer", 0, 0, 1, 0)})
	return id, a, b
}

func (s *APITestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"status":"ok"`)
}

func (s *APITestSuite) TestCreateGameDefaults() {
	w := s.do(http.MethodPost, "/api/v1/games", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var g game.Game
	s.decode(w, &g)
	s.Equal(10, g.Config.BoardSize)
	s.Equal(2, g.Config.MaxPlayers)
	s.Equal(game.StatusSetup, g.Status)

	w = s.do(http.MethodGet, "/api/v1/games", nil)
	var games []*game.Game
	s.decode(w, &games)
	s.Len(games, 1)
}

func (s *APITestSuite) TestCreateGameInvalidConfig() {
	w := s.do(http.MethodPost, "/api/v1/games", map[string]interface{}{
		"config": map[string]interface{}{"board_size": 3},
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apperrors.ErrInvalidConfig, s.errorCode(w))
}

func (s *APITestSuite) TestGameNotFound() {
	w := s.do(http.MethodGet, "/api/v1/games/missing", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(apperrors.ErrGameNotFound, s.errorCode(w))

	w = s.do(http.MethodPost, "/api/v1/games/missing/join", map[string]string{"player_name": "x"})
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APITestSuite) TestJoinFullAndStarted() {
	id, _, _ := s.startDuel()

	w := s.do(http.MethodPost, "/api/v1/games/"+id+"/join", map[string]string{"player_name": "carol"})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal(apperrors.ErrGameFull, s.errorCode(w))

	id = s.createGame(map[string]interface{}{"max_players": 3})
	a := s.join(id, "alice")
	b := s.join(id, "bob")
	s.placeAndReady(id, a, []map[string]interface{}{ship("Destroyer", 0, 0, 1, 0)})
	s.placeAndReady(id, b, []map[string]interface{}{ship("Destroyer", 0, 0, 1, 0)})

	w = s.do(http.MethodPost, "/api/v1/games/"+id+"/join", map[string]string{"player_name": "carol"})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal(apperrors.ErrGameAlreadyStarted, s.errorCode(w))
}

func (s *APITestSuite) TestPlaceShipsInvalid() {
	id := s.createGame(map[string]interface{}{"board_size": 5})
	a := s.join(id, "alice")

	w := s.do(http.MethodPost, "/api/v1/games/"+id+"/players/"+a+"/ships",
		map[string]interface{}{"ships": []map[string]interface{}{ship("Destroyer", 4, 4, 5, 4)}})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apperrors.ErrInvalidPlacement, s.errorCode(w))

	w = s.do(http.MethodPost, "/api/v1/games/"+id+"/players/unknown/ships",
		map[string]interface{}{"ships": []map[string]interface{}{ship("Destroyer", 0, 0)}})
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/v1/games/"+id+"/players/"+a+"/ready", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apperrors.ErrNoShipsPlaced, s.errorCode(w))
}

func (s *APITestSuite) TestAttackToFinishAndArchive() {
	id, a, b := s.startDuel()

	// 非当前玩家
	w := s.do(http.MethodPost, "/api/v1/games/"+id+"/attack?attacker_id="+b+"&target_id="+a,
		map[string]interface{}{"position": at(4, 4)})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal(apperrors.ErrNotYourTurn, s.errorCode(w))

	// 缺少查询参数
	w = s.do(http.MethodPost, "/api/v1/games/"+id+"/attack?attacker_id="+a,
		map[string]interface{}{"position": at(0, 0)})
	s.Equal(http.StatusBadRequest, w.Code)

	var result game.ActionResult
	w = s.do(http.MethodPost, "/api/v1/games/"+id+"/attack?attacker_id="+a+"&target_id="+b,
		map[string]interface{}{"position": at(0, 0)})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &result)
	s.True(result.Hit)
	s.Equal(b, result.NextPlayerID)
	s.Require().NotNil(result.AchievementEarned)

	w = s.do(http.MethodPost, "/api/v1/games/"+id+"/attack?attacker_id="+b+"&target_id="+a,
		map[string]interface{}{"position": at(2, 2)})
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/games/"+id+"/attack?attacker_id="+a+"&target_id="+b,
		map[string]interface{}{"position": at(1, 0)})
	s.Require().Equal(http.StatusOK, w.Code)
	result = game.ActionResult{}
	s.decode(w, &result)
	s.Equal("Destroyer", result.SunkShip)
	s.Equal(game.StatusFinished, result.GameStatus)
	s.Equal(a, result.WinnerID)

	w = s.do(http.MethodGet, "/api/v1/games/"+id+"/players/"+a+"/achievements", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "first_blood")

	// 结束后的归档
	w = s.do(http.MethodGet, "/api/v1/records", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list RecordListResponse
	s.decode(w, &list)
	s.Equal(int64(1), list.Total)
	s.Require().Len(list.Records, 1)
	s.Equal(id, list.Records[0].GameID)
	s.Equal(a, list.Records[0].WinnerID)

	w = s.do(http.MethodGet, "/api/v1/records/"+id, nil)
	s.Equal(http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/v1/records/missing", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APITestSuite) TestCastSpell() {
	id, a, b := s.startDuel()

	w := s.do(http.MethodPost, "/api/v1/games/"+id+"/spell?caster_id="+a+"&target_id="+b,
		map[string]interface{}{"spell_type": "fireball", "target_position": at(0, 0)})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apperrors.ErrInvalidSpell, s.errorCode(w))

	w = s.do(http.MethodPost, "/api/v1/games/"+id+"/spell?caster_id="+a+"&target_id="+b,
		map[string]interface{}{"spell_type": "airstrike", "target_position": at(0, 0)})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apperrors.ErrSpellUnavailable, s.errorCode(w))

	w = s.do(http.MethodPost, "/api/v1/games/"+id+"/spell?caster_id="+a+"&target_id="+b,
		map[string]interface{}{"spell_type": "nuke", "target_position": at(0, 0)})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var result game.ActionResult
	s.decode(w, &result)
	s.True(result.Hit)
	s.Len(result.AffectedPositions, 4)
	s.Equal(2, result.HitCount)
	s.Equal(game.StatusFinished, result.GameStatus)
}

func (s *APITestSuite) TestActionRequiredFields() {
	id, a, b := s.startDuel()
	attackPath := "/api/v1/games/" + id + "/attack?attacker_id=" + a + "&target_id=" + b
	spellPath := "/api/v1/games/" + id + "/spell?caster_id=" + a + "&target_id=" + b

	cases := []struct {
		name string
		path string
		body interface{}
	}{
		{"attack without position", attackPath, map[string]interface{}{}},
		{"attack without body", attackPath, nil},
		{"attack without target_id", "/api/v1/games/" + id + "/attack?attacker_id=" + a, map[string]interface{}{"position": at(0, 0)}},
		{"spell without caster_id", "/api/v1/games/" + id + "/spell?target_id=" + b, map[string]interface{}{"spell_type": "nuke", "target_position": at(0, 0)}},
		{"spell without spell_type", spellPath, map[string]interface{}{"target_position": at(0, 0)}},
		{"spell without target_position", spellPath, map[string]interface{}{"spell_type": "nuke"}},
	}
	for _, tc := range cases {
		w := s.do(http.MethodPost, tc.path, tc.body)
		s.Equal(http.StatusBadRequest, w.Code, tc.name)
		s.Equal(apperrors.ErrInvalidParam, s.errorCode(w), tc.name)
	}

	// 校验失败不消耗回合
	w := s.do(http.MethodGet, "/api/v1/games/"+id, nil)
	var g game.Game
	s.decode(w, &g)
	s.Equal(0, g.Turns)
	s.Equal(0, g.CurrentPlayerIndex)
}

func (s *APITestSuite) TestDeleteGame() {
	id := s.createGame(nil)

	w := s.do(http.MethodDelete, "/api/v1/games/"+id, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/games/"+id, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APITestSuite) TestWebSocketSubscription() {
	server := httptest.NewServer(s.router.Engine())
	defer server.Close()

	id := s.createGame(nil)
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/games/" + id
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	defer conn.Close()

	read := func() websocket.Message {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		s.Require().NoError(err)
		var msg websocket.Message
		s.Require().NoError(json.Unmarshal(data, &msg))
		return msg
	}
	s.Equal(websocket.MessageTypeConnected, read().Type)

	s.join(id, "alice")
	msg := read()
	s.Equal(game.NotifyPlayerJoined, msg.Type)
	s.Equal(id, msg.GameID)

	_, resp, err := gorillaws.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws/games/missing", nil)
	s.Error(err)
	s.Require().NotNil(resp)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *APITestSuite) TestCORSPreflight() {
	w := s.do(http.MethodOptions, "/api/v1/games", nil)
	s.Equal(http.StatusNoContent, w.Code)
	s.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
