package playlist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avtopology/internal/future"
	"avtopology/internal/models"
	"avtopology/internal/service"
	"avtopology/internal/service/servicetest"
	"avtopology/internal/watch"
)

func TestInsertAndDelete(t *testing.T) {
	th := servicetest.NewThread(t)
	d := service.NewDevice(th, "ds1")
	d.Add(NewMock(d, DefaultConfig()))
	p := servicetest.Proxy[*Proxy](t, th, d, Kind)

	first, err := servicetest.Await(t, th, func() future.Future[uint32] { return p.Insert(0, "http://a", "<a/>") })
	require.NoError(t, err)
	second, err := servicetest.Await(t, th, func() future.Future[uint32] { return p.Insert(first, "http://b", "<b/>") })
	require.NoError(t, err)
	front, err := servicetest.Await(t, th, func() future.Future[uint32] { return p.Insert(0, "http://c", "<c/>") })
	require.NoError(t, err)

	th.Execute(func() {
		assert.Equal(t, []uint32{front, first, second}, p.IdArray().Value())
	})

	_, err = servicetest.Await(t, th, func() future.Future[uint32] { return p.Insert(999, "x", "") })
	assert.ErrorIs(t, err, models.ErrNotFound)

	track, err := servicetest.Await(t, th, func() future.Future[Track] { return p.Read(second) })
	require.NoError(t, err)
	assert.Equal(t, Track{Id: second, Uri: "http://b", Metadata: "<b/>"}, track)

	list, err := servicetest.Await(t, th, func() future.Future[[]Track] { return p.ReadList([]uint32{second, 999, front}) })
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "http://c", list[1].Uri)

	_, err = servicetest.Await(t, th, func() future.Future[struct{}] { return p.DeleteId(first) })
	require.NoError(t, err)
	th.Execute(func() {
		assert.Equal(t, []uint32{front, second}, p.IdArray().Value())
	})

	_, err = servicetest.Await(t, th, func() future.Future[Track] { return p.Read(first) })
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = servicetest.Await(t, th, p.DeleteAll)
	require.NoError(t, err)
	th.Execute(func() {
		assert.Empty(t, p.IdArray().Value())
		assert.Equal(t, uint32(0), p.Id().Value())
		p.Dispose()
	})
}

func TestInsertRespectsTracksMax(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TracksMax = 1
	cfg.Tracks = []Track{{Id: 5}}
	th := servicetest.NewThread(t)
	d := service.NewDevice(th, "ds1")
	d.Add(NewMock(d, cfg))
	p := servicetest.Proxy[*Proxy](t, th, d, Kind)

	_, err := servicetest.Await(t, th, func() future.Future[uint32] { return p.Insert(5, "u", "") })
	assert.ErrorIs(t, err, models.ErrNotSupported)
	th.Execute(func() { p.Dispose() })
}

func TestTransportAndNavigation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tracks = []Track{{Id: 1}, {Id: 2}, {Id: 3}}
	th := servicetest.NewThread(t)
	d := service.NewDevice(th, "ds1")
	d.Add(NewMock(d, cfg))
	p := servicetest.Proxy[*Proxy](t, th, d, Kind)

	await := func(fn func() future.Future[struct{}]) {
		t.Helper()
		_, err := servicetest.Await(t, th, fn)
		require.NoError(t, err)
	}
	current := func() (id uint32, state string) {
		th.Execute(func() {
			id = p.Id().Value()
			state = p.TransportState().Value()
		})
		return
	}

	await(p.Play)
	id, state := current()
	assert.Equal(t, uint32(1), id)
	assert.Equal(t, models.TransportStatePlaying, state)

	await(p.Next)
	await(p.Next)
	id, _ = current()
	assert.Equal(t, uint32(3), id)

	// end of list without repeat stops
	await(p.Next)
	id, state = current()
	assert.Equal(t, uint32(3), id)
	assert.Equal(t, models.TransportStateStopped, state)

	await(func() future.Future[struct{}] { return p.SetRepeat(true) })
	await(p.Next)
	id, _ = current()
	assert.Equal(t, uint32(1), id)
	await(p.Previous)
	id, _ = current()
	assert.Equal(t, uint32(3), id)

	await(func() future.Future[struct{}] { return p.SeekIndex(1) })
	id, _ = current()
	assert.Equal(t, uint32(2), id)

	_, err := servicetest.Await(t, th, func() future.Future[struct{}] { return p.SeekIndex(3) })
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = servicetest.Await(t, th, func() future.Future[struct{}] { return p.SeekId(42) })
	assert.ErrorIs(t, err, models.ErrNotFound)

	await(p.Pause)
	_, state = current()
	assert.Equal(t, models.TransportStatePaused, state)

	// deleting the current track moves to its successor
	await(func() future.Future[struct{}] { return p.DeleteId(2) })
	id, _ = current()
	assert.Equal(t, uint32(3), id)

	th.Execute(func() { p.Dispose() })
}

func TestScriptIdArray(t *testing.T) {
	th := servicetest.NewThread(t)
	d := service.NewDevice(th, "ds1")
	d.Add(NewMock(d, DefaultConfig()))
	p := servicetest.Proxy[*Proxy](t, th, d, Kind)

	var updates [][]uint32
	w := &watch.Funcs[[]uint32]{
		Update: func(v, _ []uint32) { updates = append(updates, v) },
	}
	th.Execute(func() { p.IdArray().AddWatcher(w) })

	require.NoError(t, servicetest.Exec(t, th, d, "playlist idarray 4 5 6"))
	require.NoError(t, servicetest.Exec(t, th, d, "playlist IdArray 4 5 6"))
	require.NoError(t, servicetest.Exec(t, th, d, "playlist idarray"))
	assert.Equal(t, [][]uint32{{4, 5, 6}, {}}, updates)

	require.NoError(t, servicetest.Exec(t, th, d, "playlist repeat true"))
	require.NoError(t, servicetest.Exec(t, th, d, "playlist shuffle TRUE"))
	require.NoError(t, servicetest.Exec(t, th, d, "playlist transportstate Buffering"))
	require.NoError(t, servicetest.Exec(t, th, d, "playlist tracksmax 5"))
	require.NoError(t, servicetest.Exec(t, th, d, "playlist protocolinfo http-get:*:*:* rtsp:*:*:*"))
	require.NoError(t, servicetest.Exec(t, th, d, "playlist id 9"))
	assert.ErrorIs(t, servicetest.Exec(t, th, d, "playlist loop on"), models.ErrNotSupported)
	assert.Error(t, servicetest.Exec(t, th, d, "playlist idarray 1 x"))

	th.Execute(func() {
		assert.True(t, p.Repeat().Value())
		assert.True(t, p.Shuffle().Value())
		assert.Equal(t, models.TransportStateBuffering, p.TransportState().Value())
		assert.Equal(t, uint32(5), p.TracksMax())
		assert.Equal(t, "http-get:*:*:* rtsp:*:*:*", p.ProtocolInfo())
		assert.Equal(t, uint32(9), p.Id().Value())

		p.IdArray().RemoveWatcher(w)
		p.Dispose()
	})
}

func TestNetworkService(t *testing.T) {
	th := servicetest.NewThread(t)
	d := service.NewDevice(th, "ds2")
	client := servicetest.NewClient()
	client.Outputs["Insert"] = map[string]string{"NewId": "17"}
	client.Outputs["ReadList"] = map[string]string{"TrackList": `[{"id":17,"uri":"http://x","metadata":""}]`}
	d.Add(NewNetwork(d, client))

	p := servicetest.Proxy[*Proxy](t, th, d, Kind, func() {
		client.Emit(t, "ds2", "playlist", map[string]string{
			"Id": "17", "IdArray": "16 17", "TransportState": "Playing", "Repeat": "false", "TracksMax": "1000",
		})
	})
	th.Execute(func() {
		assert.Equal(t, uint32(17), p.Id().Value())
		assert.Equal(t, []uint32{16, 17}, p.IdArray().Value())
		assert.Equal(t, models.TransportStatePlaying, p.TransportState().Value())
		assert.Equal(t, uint32(1000), p.TracksMax())
	})

	id, err := servicetest.Await(t, th, func() future.Future[uint32] { return p.Insert(16, "http://x", "") })
	require.NoError(t, err)
	assert.Equal(t, uint32(17), id)

	list, err := servicetest.Await(t, th, func() future.Future[[]Track] { return p.ReadList([]uint32{17}) })
	require.NoError(t, err)
	assert.Equal(t, []Track{{Id: 17, Uri: "http://x"}}, list)

	calls := client.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, map[string]string{"AfterId": "16", "Uri": "http://x", "Metadata": ""}, calls[0].Args)
	assert.Equal(t, map[string]string{"IdList": "17"}, calls[1].Args)

	client.Err = errors.New("device unreachable")
	_, err = servicetest.Await(t, th, p.Play)
	assert.ErrorContains(t, err, "device unreachable")

	th.Execute(func() { p.Dispose() })
}
