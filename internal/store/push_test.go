package store

import (
	"testing"
	"time"

	"github.com/dukerupert/fusionmeals/internal/model"
)

func setupPushTestDB(t *testing.T) (*PushStore, string) {
	t.Helper()
	db := openTestDB(t)
	return NewPushStore(db), createTestUser(t, db, "user-1")
}

func TestCreateSubscription(t *testing.T) {
	ps, uid := setupPushTestDB(t)

	sub, err := ps.CreateSubscription(uid, "https://push.example.com/sub1", "p256dh_key1", "auth_key1", "Chrome Desktop")
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	if sub.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if sub.DeviceName != "Chrome Desktop" {
		t.Errorf("device_name = %q, want %q", sub.DeviceName, "Chrome Desktop")
	}
}

func TestCreateSubscriptionUpsert(t *testing.T) {
	ps, uid := setupPushTestDB(t)

	sub1, _ := ps.CreateSubscription(uid, "https://push.example.com/sub1", "key1", "auth1", "Device A")
	sub2, err := ps.CreateSubscription(uid, "https://push.example.com/sub1", "key2", "auth2", "Device B")
	if err != nil {
		t.Fatalf("upsert subscription: %v", err)
	}
	if sub2.ID != sub1.ID {
		t.Errorf("expected same ID on upsert, got %d != %d", sub2.ID, sub1.ID)
	}
	if sub2.P256dhKey != "key2" {
		t.Errorf("p256dh = %q, want %q", sub2.P256dhKey, "key2")
	}
}

func TestPushListAndDelete(t *testing.T) {
	db := openTestDB(t)
	ps := NewPushStore(db)
	a := createTestUser(t, db, "user-a")
	b := createTestUser(t, db, "user-b")

	subA, _ := ps.CreateSubscription(a, "https://push.example.com/a", "k1", "a1", "D1")
	ps.CreateSubscription(b, "https://push.example.com/b", "k2", "a2", "D2")

	ids, err := ps.ListUserIDs()
	if err != nil {
		t.Fatalf("list user ids: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("ids = %v, want 2 users", ids)
	}

	// cannot delete another user's subscription
	ok, err := ps.DeleteSubscription(subA.ID, b)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok {
		t.Error("expected cross-user delete to report not found")
	}
	if subs, _ := ps.ListByUser(a); len(subs) != 1 {
		t.Errorf("user a subs = %d, want 1", len(subs))
	}

	ok, _ = ps.DeleteSubscription(subA.ID, a)
	if !ok {
		t.Error("expected delete to succeed for owner")
	}
}

func TestDeleteByEndpoint(t *testing.T) {
	ps, uid := setupPushTestDB(t)

	ps.CreateSubscription(uid, "https://push.example.com/expired", "k1", "a1", "D1")
	if err := ps.DeleteByEndpoint("https://push.example.com/expired"); err != nil {
		t.Fatalf("delete by endpoint: %v", err)
	}
	subs, _ := ps.ListByUser(uid)
	if len(subs) != 0 {
		t.Errorf("expected 0 subs, got %d", len(subs))
	}
}

func TestPreferences(t *testing.T) {
	ps, uid := setupPushTestDB(t)

	enabled, err := ps.IsPreferenceEnabled(uid, model.NotifTypePantryExpiring)
	if err != nil {
		t.Fatalf("check default pref: %v", err)
	}
	if !enabled {
		t.Error("expected default enabled=true")
	}

	if err := ps.SetPreference(uid, model.NotifTypePantryExpiring, false); err != nil {
		t.Fatalf("set preference: %v", err)
	}
	enabled, _ = ps.IsPreferenceEnabled(uid, model.NotifTypePantryExpiring)
	if enabled {
		t.Error("expected enabled=false after setting")
	}

	prefs, err := ps.GetPreferences(uid)
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if len(prefs) != 1 || prefs[0].NotificationType != model.NotifTypePantryExpiring {
		t.Fatalf("prefs = %+v, want one pantry_expiring entry", prefs)
	}

	ps.SetPreference(uid, model.NotifTypePantryExpiring, true)
	enabled, _ = ps.IsPreferenceEnabled(uid, model.NotifTypePantryExpiring)
	if !enabled {
		t.Error("expected enabled=true after upsert")
	}
}

func TestSentNotificationDedup(t *testing.T) {
	ps, uid := setupPushTestDB(t)

	sent, err := ps.WasSent(uid, model.NotifTypePantryLowStock, "2026-10-18")
	if err != nil {
		t.Fatalf("was sent: %v", err)
	}
	if sent {
		t.Error("expected not sent")
	}

	if err := ps.RecordSent(uid, model.NotifTypePantryLowStock, "2026-10-18"); err != nil {
		t.Fatalf("record sent: %v", err)
	}
	sent, _ = ps.WasSent(uid, model.NotifTypePantryLowStock, "2026-10-18")
	if !sent {
		t.Error("expected sent after recording")
	}

	sent, _ = ps.WasSent(uid, model.NotifTypePantryExpiring, "2026-10-18")
	if sent {
		t.Error("expected other notification type to be separate")
	}

	if err := ps.RecordSent(uid, model.NotifTypePantryLowStock, "2026-10-18"); err != nil {
		t.Fatalf("duplicate record sent should not error: %v", err)
	}
}

func TestCleanupSent(t *testing.T) {
	ps, uid := setupPushTestDB(t)

	ps.RecordSent(uid, model.NotifTypePantryExpiring, "2026-10-17")

	if err := ps.CleanupSent(time.Now().UTC().Add(-time.Hour)); err != nil {
		t.Fatalf("cleanup sent: %v", err)
	}
	if sent, _ := ps.WasSent(uid, model.NotifTypePantryExpiring, "2026-10-17"); !sent {
		t.Error("expected record to survive a past cutoff")
	}

	if err := ps.CleanupSent(time.Now().UTC().Add(time.Hour)); err != nil {
		t.Fatalf("cleanup sent: %v", err)
	}
	if sent, _ := ps.WasSent(uid, model.NotifTypePantryExpiring, "2026-10-17"); sent {
		t.Error("expected record to be cleaned up")
	}
}
